package model

import "time"

// CollegeStatus tracks a college through the admin-application approval
// flow. ACTIVE and REJECTED are terminal.
type CollegeStatus string

const (
	CollegePending  CollegeStatus = "PENDING"
	CollegeActive   CollegeStatus = "ACTIVE"
	CollegeRejected CollegeStatus = "REJECTED"
)

// College is the tenant record. Exactly one row system-wide has
// IsSystemCollege set; it holds platform-operator accounts and never posts
// jobs.
type College struct {
	ID                 uint          `json:"id" gorm:"primaryKey"`
	Name               string        `json:"name" gorm:"type:varchar(200);not null;uniqueIndex"`
	Location           string        `json:"location" gorm:"type:varchar(200)"`
	Website            string        `json:"website" gorm:"type:varchar(255)"`
	Address            string        `json:"address" gorm:"type:text"`
	AllowedEmailDomain *string       `json:"allowed_email_domain,omitempty" gorm:"type:varchar(100)"`
	Status             CollegeStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	IsSystemCollege    bool          `json:"is_system_college" gorm:"default:false"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}
