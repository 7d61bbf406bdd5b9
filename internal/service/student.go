package service

import (
	"context"
	"errors"

	"campushire/internal/access"
	"campushire/internal/apperr"
	"campushire/internal/model"
	"campushire/internal/principal"
	"campushire/internal/store"

	"go.uber.org/zap"
)

// Students is the admin-facing roster of a college's students.
type Students struct {
	store store.Store
	log   *zap.Logger
}

func NewStudents(st store.Store, log *zap.Logger) *Students {
	return &Students{store: st, log: log}
}

// List returns one page of the admin's own college roster, optionally
// filtered by a name/email search.
func (s *Students) List(ctx context.Context, p principal.Principal, search string, page, limit int) ([]model.Student, Pagination, error) {
	collegeID := adminCollege(p)
	if err := access.Can(p, access.ActionManageStudents, access.InCollege(collegeID)).Err(); err != nil {
		return nil, Pagination{}, err
	}

	students, total, err := s.store.Students().ListByCollege(ctx, collegeID, search, page, limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return students, paginate(page, limit, total), nil
}

func (s *Students) Get(ctx context.Context, p principal.Principal, id uint) (*model.Student, error) {
	student, err := s.store.Students().ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("student not found")
		}
		return nil, err
	}
	if err := access.Can(p, access.ActionManageStudents, access.InCollege(student.CollegeID)).Err(); err != nil {
		return nil, err
	}
	return student, nil
}

// Assign moves a student into the calling admin's college. The check runs
// against the destination, so an admin can pull a student in from any
// college but never push one elsewhere.
func (s *Students) Assign(ctx context.Context, p principal.Principal, studentID uint) (*model.Student, error) {
	admin, ok := p.AdminProfile()
	if err := access.Can(p, access.ActionManageStudents, access.InCollege(adminCollege(p))).Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Authorization("only admins can assign students")
	}

	student, err := s.store.Students().ByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("student not found")
		}
		return nil, err
	}
	if student.CollegeID == admin.CollegeID {
		return nil, apperr.Validation("student is already assigned to this college")
	}

	student.CollegeID = admin.CollegeID
	if err := s.store.Students().Update(ctx, student); err != nil {
		return nil, err
	}

	s.log.Info("student reassigned",
		zap.Uint("student_id", student.ID),
		zap.Uint("college_id", admin.CollegeID),
		zap.Uint("assigned_by", p.UserID))
	return student, nil
}
