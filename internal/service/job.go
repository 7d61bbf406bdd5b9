package service

import (
	"context"
	"errors"
	"time"

	"campushire/internal/access"
	"campushire/internal/apperr"
	"campushire/internal/model"
	"campushire/internal/principal"
	"campushire/internal/store"
	"campushire/prometheus"

	"go.uber.org/zap"
)

// Jobs covers posting and browsing jobs plus the student application flow.
type Jobs struct {
	store store.Store
	log   *zap.Logger
}

func NewJobs(st store.Store, log *zap.Logger) *Jobs {
	return &Jobs{store: st, log: log}
}

type CreateJobInput struct {
	Title        string
	Description  string
	Requirements string
	Location     string
	ExpiresAt    *time.Time
}

// Create posts a job under the admin's own college. The system college is
// not a job-posting tenant.
func (s *Jobs) Create(ctx context.Context, p principal.Principal, in CreateJobInput) (*model.Job, error) {
	admin, ok := p.AdminProfile()
	if err := access.Can(p, access.ActionManageJobs, access.InCollege(adminCollege(p))).Err(); err != nil {
		return nil, err
	}
	if ok && admin.IsSystemAdmin {
		return nil, apperr.Authorization("the system college cannot post jobs")
	}

	job := &model.Job{
		CollegeID:    admin.CollegeID,
		Title:        in.Title,
		Description:  in.Description,
		Requirements: in.Requirements,
		Location:     in.Location,
		Status:       model.JobActive,
		ExpiresAt:    in.ExpiresAt,
	}
	if err := s.store.Jobs().Create(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info("job posted",
		zap.Uint("job_id", job.ID),
		zap.Uint("college_id", job.CollegeID),
		zap.String("title", job.Title))
	return job, nil
}

// List returns the caller's own college's jobs. Students and admins both
// land here; the evaluator pins the college to the caller's profile.
func (s *Jobs) List(ctx context.Context, p principal.Principal, status *model.JobStatus, search string) ([]model.Job, error) {
	collegeID := principalCollege(p)
	if err := access.Can(p, access.ActionViewJobs, access.InCollege(collegeID)).Err(); err != nil {
		return nil, err
	}
	return s.store.Jobs().ListByCollege(ctx, collegeID, status, search)
}

func (s *Jobs) Get(ctx context.Context, p principal.Principal, id uint) (*model.Job, error) {
	job, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Can(p, access.ActionViewJobs, access.InCollege(job.CollegeID)).Err(); err != nil {
		return nil, err
	}
	return job, nil
}

type UpdateJobInput struct {
	Title        *string
	Description  *string
	Requirements *string
	Location     *string
	Status       *model.JobStatus
	ExpiresAt    *time.Time
}

// Update edits a job in place. Status moves freely between ACTIVE and
// CLOSED in either direction.
func (s *Jobs) Update(ctx context.Context, p principal.Principal, id uint, in UpdateJobInput) (*model.Job, error) {
	job, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Can(p, access.ActionManageJobs, access.InCollege(job.CollegeID)).Err(); err != nil {
		return nil, err
	}

	if in.Title != nil {
		job.Title = *in.Title
	}
	if in.Description != nil {
		job.Description = *in.Description
	}
	if in.Requirements != nil {
		job.Requirements = *in.Requirements
	}
	if in.Location != nil {
		job.Location = *in.Location
	}
	if in.Status != nil {
		if *in.Status != model.JobActive && *in.Status != model.JobClosed {
			return nil, apperr.Validation("status must be ACTIVE or CLOSED")
		}
		job.Status = *in.Status
	}
	if in.ExpiresAt != nil {
		job.ExpiresAt = in.ExpiresAt
	}

	if err := s.store.Jobs().Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Jobs) Delete(ctx context.Context, p principal.Principal, id uint) error {
	job, err := s.byID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Can(p, access.ActionManageJobs, access.InCollege(job.CollegeID)).Err(); err != nil {
		return err
	}
	return s.store.Jobs().Delete(ctx, id)
}

// Apply submits a student's application. The job must be ACTIVE, unexpired,
// in the student's college, and not already applied to. Expiry is checked
// only here; an expired job stays ACTIVE until an admin closes it.
func (s *Jobs) Apply(ctx context.Context, p principal.Principal, jobID uint, resumeURL string) (*model.JobApplication, error) {
	student, ok := p.StudentProfile()
	if !ok {
		if err := access.Can(p, access.ActionApplyToJob, access.InCollege(0)).Err(); err != nil {
			return nil, err
		}
		return nil, apperr.Authorization("only students can apply to jobs")
	}

	job, err := s.byID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := access.Can(p, access.ActionApplyToJob, access.InCollege(job.CollegeID)).Err(); err != nil {
		return nil, err
	}
	if job.Status != model.JobActive {
		return nil, apperr.Validation("this job is no longer accepting applications")
	}
	if job.ExpiresAt != nil && job.ExpiresAt.Before(time.Now()) {
		return nil, apperr.Validation("job posting has expired")
	}

	if _, err := s.store.JobApplications().ByJobAndStudent(ctx, job.ID, student.StudentID); err == nil {
		return nil, apperr.Conflict("you have already applied to this job")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	app := &model.JobApplication{
		JobID:     job.ID,
		StudentID: student.StudentID,
		ResumeURL: resumeURL,
		Status:    model.JobApplicationApplied,
	}
	if err := s.store.JobApplications().Create(ctx, app); err != nil {
		// Unique (job, student) may still trip under a concurrent apply.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("you have already applied to this job")
		}
		return nil, err
	}

	prometheus.JobApplicationCounter.Inc()
	s.log.Info("job application submitted",
		zap.Uint("job_id", job.ID),
		zap.Uint("student_id", student.StudentID))
	return app, nil
}

// ListApplications returns every application for one of the admin's jobs.
func (s *Jobs) ListApplications(ctx context.Context, p principal.Principal, jobID uint) ([]model.JobApplication, error) {
	job, err := s.byID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := access.Can(p, access.ActionManageJobs, access.InCollege(job.CollegeID)).Err(); err != nil {
		return nil, err
	}
	return s.store.JobApplications().ListByJob(ctx, job.ID)
}

// MyApplications returns the calling student's own applications.
func (s *Jobs) MyApplications(ctx context.Context, p principal.Principal) ([]model.JobApplication, error) {
	student, ok := p.StudentProfile()
	if !ok {
		if err := access.Can(p, access.ActionViewOwnApplications, access.OwnedBy(0, p.UserID)).Err(); err != nil {
			return nil, err
		}
		return nil, apperr.Authorization("only students have job applications")
	}
	if err := access.Can(p, access.ActionViewOwnApplications, access.OwnedBy(student.CollegeID, p.UserID)).Err(); err != nil {
		return nil, err
	}
	return s.store.JobApplications().ListByStudent(ctx, student.StudentID)
}

// UpdateApplicationStatus sets an application's status. The status must be
// one of the known values, but no ordering between them is enforced.
func (s *Jobs) UpdateApplicationStatus(ctx context.Context, p principal.Principal, jobID, applicationID uint, status model.JobApplicationStatus) (*model.JobApplication, error) {
	job, err := s.byID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := access.Can(p, access.ActionManageJobs, access.InCollege(job.CollegeID)).Err(); err != nil {
		return nil, err
	}

	app, err := s.store.JobApplications().ByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("application not found")
		}
		return nil, err
	}
	if app.JobID != job.ID {
		return nil, apperr.NotFound("application not found for this job")
	}
	if !status.Valid() {
		return nil, apperr.Validation("status must be one of APPLIED, UNDER_REVIEW, ACCEPTED, REJECTED")
	}

	app.Status = status
	if err := s.store.JobApplications().Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *Jobs) byID(ctx context.Context, id uint) (*model.Job, error) {
	job, err := s.store.Jobs().ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("job not found")
		}
		return nil, err
	}
	return job, nil
}

// principalCollege extracts the caller's own college id, zero when the
// profile carries none.
func principalCollege(p principal.Principal) uint {
	switch profile := p.Profile.(type) {
	case principal.Student:
		return profile.CollegeID
	case principal.Admin:
		return profile.CollegeID
	case principal.SuperAdmin:
		return profile.CollegeID
	}
	return 0
}

func adminCollege(p principal.Principal) uint {
	if admin, ok := p.AdminProfile(); ok {
		return admin.CollegeID
	}
	return 0
}
