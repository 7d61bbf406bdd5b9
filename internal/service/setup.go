package service

import (
	"context"

	"campushire/internal/apperr"
	"campushire/internal/auth"
	"campushire/internal/model"
	"campushire/internal/store"

	"go.uber.org/zap"
)

// Setup bootstraps an empty deployment: the system college, the first
// SUPER_ADMIN, and their admin link row. It refuses to run twice.
type Setup struct {
	store  store.Store
	hasher *auth.Hasher
	log    *zap.Logger
}

func NewSetup(st store.Store, hasher *auth.Hasher, log *zap.Logger) *Setup {
	return &Setup{store: st, hasher: hasher, log: log}
}

type SetupInput struct {
	Name     string
	Email    string
	Password string
}

func (s *Setup) InitialSetup(ctx context.Context, in SetupInput) (*model.User, error) {
	collegeCount, err := s.store.Colleges().Count(ctx)
	if err != nil {
		return nil, err
	}
	adminCount, err := s.store.Admins().Count(ctx)
	if err != nil {
		return nil, err
	}
	if collegeCount > 0 || adminCount > 0 {
		return nil, apperr.Conflict("initial setup has already been completed")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	// The operator account is created pre-verified; there is nobody to send
	// a verification email from yet.
	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		IsVerified:   true,
	}
	college := &model.College{
		Name:            "System Administration",
		Status:          model.CollegeActive,
		IsSystemCollege: true,
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Colleges().Create(ctx, college); err != nil {
			return err
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.Admins().Create(ctx, &model.Admin{
			UserID:      user.ID,
			CollegeID:   college.ID,
			Description: "Platform operator",
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("initial setup completed", zap.String("email", user.Email))
	return user, nil
}
