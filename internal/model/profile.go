package model

import "time"

// Admin links a user with role ADMIN or SUPER_ADMIN to exactly one college.
// Rows are created only by application approval, super-admin invitation, or
// initial setup.
type Admin struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	CollegeID   uint      `json:"college_id" gorm:"index;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	College College `json:"college,omitempty" gorm:"foreignKey:CollegeID"`
}

// Student links a user with role STUDENT to exactly one college. An admin of
// a destination college may reassign the student there.
type Student struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	CollegeID uint      `json:"college_id" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	College College `json:"college,omitempty" gorm:"foreignKey:CollegeID"`
}
