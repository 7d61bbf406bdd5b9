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

// Colleges serves the public college directory, the operator's full list,
// and tenant self-management.
type Colleges struct {
	store store.Store
	log   *zap.Logger
}

func NewColleges(st store.Store, log *zap.Logger) *Colleges {
	return &Colleges{store: st, log: log}
}

// ListActive is the public directory used by the registration form: active
// colleges only, searchable and paginated.
func (s *Colleges) ListActive(ctx context.Context, search string, page, limit int) ([]model.College, Pagination, error) {
	colleges, total, err := s.store.Colleges().ListActive(ctx, search, page, limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return colleges, paginate(page, limit, total), nil
}

// ListAll returns every college regardless of status, for the platform
// operator.
func (s *Colleges) ListAll(ctx context.Context, p principal.Principal) ([]model.College, error) {
	if err := access.Can(p, access.ActionListAllColleges, access.System()).Err(); err != nil {
		return nil, err
	}
	return s.store.Colleges().List(ctx)
}

func (s *Colleges) Get(ctx context.Context, id uint) (*model.College, error) {
	college, err := s.store.Colleges().ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("college not found")
		}
		return nil, err
	}
	return college, nil
}

type UpdateCollegeInput struct {
	Location           *string
	Website            *string
	Address            *string
	AllowedEmailDomain *string
}

// Update edits a college's mutable profile fields. Name and status are not
// editable here; status only moves through the application review flow.
func (s *Colleges) Update(ctx context.Context, p principal.Principal, id uint, in UpdateCollegeInput) (*model.College, error) {
	college, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Can(p, access.ActionManageCollege, access.InCollege(college.ID)).Err(); err != nil {
		return nil, err
	}

	if in.Location != nil {
		college.Location = *in.Location
	}
	if in.Website != nil {
		college.Website = *in.Website
	}
	if in.Address != nil {
		college.Address = *in.Address
	}
	if in.AllowedEmailDomain != nil {
		if *in.AllowedEmailDomain == "" {
			college.AllowedEmailDomain = nil
		} else {
			college.AllowedEmailDomain = in.AllowedEmailDomain
		}
	}

	if err := s.store.Colleges().Update(ctx, college); err != nil {
		return nil, err
	}

	s.log.Info("college updated", zap.Uint("college_id", college.ID), zap.Uint("updated_by", p.UserID))
	return college, nil
}
