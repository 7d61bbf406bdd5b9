package model

import "time"

// ApplicationStatus is shared by admin applications; PENDING is the only
// non-terminal state.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// AdminApplication is a request to become a college admin. It references the
// pending user and pending college created alongside it.
type AdminApplication struct {
	ID                      uint              `json:"id" gorm:"primaryKey"`
	UserID                  uint              `json:"user_id" gorm:"uniqueIndex;not null"`
	CollegeID               uint              `json:"college_id" gorm:"uniqueIndex;not null"`
	Position                string            `json:"position" gorm:"type:varchar(100)"`
	VerificationDocumentURL string            `json:"verification_document_url" gorm:"type:varchar(255)"`
	Status                  ApplicationStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	ReviewedBy              *uint             `json:"reviewed_by,omitempty" gorm:"index"`
	ReviewedAt              *time.Time        `json:"reviewed_at,omitempty"`
	ReviewComments          string            `json:"review_comments" gorm:"type:text"`
	CreatedAt               time.Time         `json:"created_at"`
	UpdatedAt               time.Time         `json:"updated_at"`

	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	College College `json:"college,omitempty" gorm:"foreignKey:CollegeID"`
}
