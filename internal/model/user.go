package model

import "time"

// Role is the platform-wide role stored on the user row. PENDING_ADMIN is
// the only non-terminal role: it moves to ADMIN when an admin application is
// approved. STUDENT never transitions.
type Role string

const (
	RoleStudent      Role = "STUDENT"
	RoleAdmin        Role = "ADMIN"
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RolePendingAdmin Role = "PENDING_ADMIN"
)

// User represents the identity record stored in the database
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"type:varchar(100)"`
	Email        string `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"type:varchar(255);not null"`
	Role         Role   `json:"role" gorm:"type:varchar(20);not null"`
	IsVerified   bool   `json:"is_verified" gorm:"default:false"`

	// Single-use tokens live inline, at most one active per purpose.
	EmailVerificationToken       *string    `json:"-" gorm:"type:varchar(64);index"`
	EmailVerificationTokenExpiry *time.Time `json:"-"`
	PasswordResetToken           *string    `json:"-" gorm:"type:varchar(64);index"`
	PasswordResetTokenExpiry     *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
