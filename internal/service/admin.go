package service

import (
	"context"
	"errors"

	"campushire/internal/access"
	"campushire/internal/apperr"
	"campushire/internal/auth"
	"campushire/internal/mail"
	"campushire/internal/model"
	"campushire/internal/principal"
	"campushire/internal/store"
	"campushire/pkg/config"
	"campushire/prometheus"

	"go.uber.org/zap"
)

// Admins lets the platform operator invite admins for existing colleges and
// inspect the admin roster.
type Admins struct {
	store   store.Store
	hasher  *auth.Hasher
	mailer  mail.Mailer
	oneTime config.OneTimeTokenConfig
	log     *zap.Logger
}

func NewAdmins(st store.Store, hasher *auth.Hasher, mailer mail.Mailer, oneTime config.OneTimeTokenConfig, log *zap.Logger) *Admins {
	return &Admins{store: st, hasher: hasher, mailer: mailer, oneTime: oneTime, log: log}
}

type CreateAdminInput struct {
	Name        string
	Email       string
	CollegeID   uint
	Description string
}

// CreateAdmin provisions an admin account with a generated temporary
// password and emails the invitation. The user and admin rows are created
// together; if the invitation email fails they are deleted again.
func (s *Admins) CreateAdmin(ctx context.Context, p principal.Principal, in CreateAdminInput) (*model.Admin, error) {
	if err := access.Can(p, access.ActionCreateAdmin, access.System()).Err(); err != nil {
		return nil, err
	}

	if _, err := s.store.Users().ByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("user with this email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	college, err := s.store.Colleges().ByID(ctx, in.CollegeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Validation("invalid college id")
		}
		return nil, err
	}
	if college.Status != model.CollegeActive {
		return nil, apperr.Validation("admins can only be created for active colleges")
	}

	tempPassword := auth.NewTempPassword()
	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return nil, err
	}
	verification := auth.NewOneTimeToken(s.oneTime.VerificationExpiry)

	user := &model.User{
		Name:                         in.Name,
		Email:                        in.Email,
		PasswordHash:                 hash,
		Role:                         model.RoleAdmin,
		EmailVerificationToken:       &verification.Token,
		EmailVerificationTokenExpiry: &verification.ExpiresAt,
	}
	admin := &model.Admin{CollegeID: college.ID, Description: in.Description}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		admin.UserID = user.ID
		return tx.Admins().Create(ctx, admin)
	})
	if err != nil {
		return nil, err
	}

	err = s.mailer.Send(ctx, mail.Message{
		Kind: mail.KindAdminInvitation,
		To:   user.Email,
		Data: map[string]string{
			"Name":         user.Name,
			"CollegeName":  college.Name,
			"TempPassword": tempPassword,
			"Token":        verification.Token,
		},
	})
	if err != nil {
		s.log.Error("failed to send admin invitation, undoing account",
			zap.String("email", user.Email), zap.Error(err))
		prometheus.RecordEmail(string(mail.KindAdminInvitation), "failed")
		s.compensateCreateAdmin(ctx, user.ID)
		return nil, apperr.Dependency("failed to send invitation email")
	}
	prometheus.RecordEmail(string(mail.KindAdminInvitation), "sent")

	s.log.Info("admin invited",
		zap.String("email", user.Email),
		zap.Uint("college_id", college.ID),
		zap.Uint("invited_by", p.UserID))
	admin.User = *user
	admin.College = *college
	return admin, nil
}

func (s *Admins) compensateCreateAdmin(ctx context.Context, userID uint) {
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Admins().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, userID)
	})
	if err != nil {
		s.log.Error("admin invitation compensation failed, orphaned rows remain",
			zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (s *Admins) List(ctx context.Context, p principal.Principal) ([]model.Admin, error) {
	if err := access.Can(p, access.ActionListAdmins, access.System()).Err(); err != nil {
		return nil, err
	}
	return s.store.Admins().List(ctx)
}
