package model

import "time"

// JobStatus is admin-settable in either direction. Expiry does not close a
// job automatically; it is only checked when a student applies.
type JobStatus string

const (
	JobActive JobStatus = "ACTIVE"
	JobClosed JobStatus = "CLOSED"
)

// Job belongs to exactly one college.
type Job struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	CollegeID    uint       `json:"college_id" gorm:"index;not null"`
	Title        string     `json:"title" gorm:"type:varchar(200);not null"`
	Description  string     `json:"description" gorm:"type:text"`
	Requirements string     `json:"requirements" gorm:"type:text"`
	Location     string     `json:"location" gorm:"type:varchar(200)"`
	Status       JobStatus  `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	College College `json:"college,omitempty" gorm:"foreignKey:CollegeID"`
}

// JobApplicationStatus has no enforced ordering between states; admins set
// any known status from any status.
type JobApplicationStatus string

const (
	JobApplicationApplied     JobApplicationStatus = "APPLIED"
	JobApplicationUnderReview JobApplicationStatus = "UNDER_REVIEW"
	JobApplicationAccepted    JobApplicationStatus = "ACCEPTED"
	JobApplicationRejected    JobApplicationStatus = "REJECTED"
)

// Valid reports whether s is one of the known application statuses.
func (s JobApplicationStatus) Valid() bool {
	switch s {
	case JobApplicationApplied, JobApplicationUnderReview, JobApplicationAccepted, JobApplicationRejected:
		return true
	}
	return false
}

// JobApplication links one student to one job, unique per pair.
type JobApplication struct {
	ID        uint                 `json:"id" gorm:"primaryKey"`
	JobID     uint                 `json:"job_id" gorm:"not null;uniqueIndex:idx_job_student"`
	StudentID uint                 `json:"student_id" gorm:"not null;uniqueIndex:idx_job_student"`
	ResumeURL string               `json:"resume_url" gorm:"type:varchar(255)"`
	Status    JobApplicationStatus `json:"status" gorm:"type:varchar(20);not null;default:'APPLIED'"`
	AppliedAt time.Time            `json:"applied_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time            `json:"updated_at"`

	Job     Job     `json:"job,omitempty" gorm:"foreignKey:JobID"`
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}
