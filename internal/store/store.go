// Package store defines the persistence ports consumed by the domain
// services. The GORM adapter lives in this package; an in-memory adapter for
// tests lives in store/memory.
package store

import (
	"context"
	"errors"
	"time"

	"campushire/internal/model"
)

// ErrNotFound is returned by every lookup that matches no row
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a create violates a unique constraint
var ErrDuplicate = errors.New("duplicate record")

// Store aggregates the per-entity stores and transaction support. InTx runs
// fn against a transactional view of the store; returning an error rolls
// every statement back.
type Store interface {
	Users() UserStore
	Colleges() CollegeStore
	Admins() AdminStore
	Students() StudentStore
	AdminApplications() AdminApplicationStore
	Jobs() JobStore
	JobApplications() JobApplicationStore
	RefreshTokens() RefreshTokenStore

	InTx(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id uint) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	// ByVerificationToken matches the inline verification token with an
	// expiry after now.
	ByVerificationToken(ctx context.Context, token string, now time.Time) (*model.User, error)
	ByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uint) error
}

type CollegeStore interface {
	Create(ctx context.Context, college *model.College) error
	ByID(ctx context.Context, id uint) (*model.College, error)
	// ByNameInsensitive performs a case-insensitive exact name match.
	ByNameInsensitive(ctx context.Context, name string) (*model.College, error)
	List(ctx context.Context) ([]model.College, error)
	ListActive(ctx context.Context, search string, page, limit int) ([]model.College, int64, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, college *model.College) error
	Delete(ctx context.Context, id uint) error
}

type AdminStore interface {
	Create(ctx context.Context, admin *model.Admin) error
	ByUserID(ctx context.Context, userID uint) (*model.Admin, error)
	List(ctx context.Context) ([]model.Admin, error)
	Count(ctx context.Context) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) error
}

type StudentStore interface {
	Create(ctx context.Context, student *model.Student) error
	ByID(ctx context.Context, id uint) (*model.Student, error)
	ByUserID(ctx context.Context, userID uint) (*model.Student, error)
	ListByCollege(ctx context.Context, collegeID uint, search string, page, limit int) ([]model.Student, int64, error)
	Update(ctx context.Context, student *model.Student) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type AdminApplicationStore interface {
	Create(ctx context.Context, app *model.AdminApplication) error
	ByID(ctx context.Context, id uint) (*model.AdminApplication, error)
	List(ctx context.Context, status *model.ApplicationStatus) ([]model.AdminApplication, error)
	Update(ctx context.Context, app *model.AdminApplication) error
	Delete(ctx context.Context, id uint) error
}

type JobStore interface {
	Create(ctx context.Context, job *model.Job) error
	ByID(ctx context.Context, id uint) (*model.Job, error)
	ListByCollege(ctx context.Context, collegeID uint, status *model.JobStatus, search string) ([]model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, id uint) error
}

type JobApplicationStore interface {
	Create(ctx context.Context, app *model.JobApplication) error
	ByID(ctx context.Context, id uint) (*model.JobApplication, error)
	// ByJobAndStudent looks up the composite-unique (job, student) pair.
	ByJobAndStudent(ctx context.Context, jobID, studentID uint) (*model.JobApplication, error)
	ListByJob(ctx context.Context, jobID uint) ([]model.JobApplication, error)
	ListByStudent(ctx context.Context, studentID uint) ([]model.JobApplication, error)
	Update(ctx context.Context, app *model.JobApplication) error
}

type RefreshTokenStore interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	// ByToken returns the row only while it exists and its expiry is after
	// now; a rotated-away token is therefore rejected by absence.
	ByToken(ctx context.Context, token string, now time.Time) (*model.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID uint) error
}
