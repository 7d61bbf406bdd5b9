package service

import (
	"context"
	"errors"
	"strconv"
	"time"

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

// AdminApplications handles the apply/review flow through which colleges
// and their admins come into existence.
type AdminApplications struct {
	store   store.Store
	hasher  *auth.Hasher
	mailer  mail.Mailer
	oneTime config.OneTimeTokenConfig
	log     *zap.Logger
}

func NewAdminApplications(st store.Store, hasher *auth.Hasher, mailer mail.Mailer, oneTime config.OneTimeTokenConfig, log *zap.Logger) *AdminApplications {
	return &AdminApplications{store: st, hasher: hasher, mailer: mailer, oneTime: oneTime, log: log}
}

// ApplyInput registers a would-be admin together with the college they want
// to administer.
type ApplyInput struct {
	Name                    string
	Email                   string
	Password                string
	Position                string
	VerificationDocumentURL string

	CollegeName        string
	CollegeLocation    string
	CollegeWebsite     string
	CollegeAddress     string
	AllowedEmailDomain string
}

// Apply creates the pending user, pending college, and application in one
// transaction, then sends the verification email. If the email cannot be
// delivered the three rows are deleted again so the applicant can retry
// from scratch.
func (s *AdminApplications) Apply(ctx context.Context, in ApplyInput) (*model.AdminApplication, error) {
	if _, err := s.store.Users().ByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("user with this email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if _, err := s.store.Colleges().ByNameInsensitive(ctx, in.CollegeName); err == nil {
		return nil, apperr.Conflict("a college with this name already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	verification := auth.NewOneTimeToken(s.oneTime.VerificationExpiry)

	college := &model.College{
		Name:     in.CollegeName,
		Location: in.CollegeLocation,
		Website:  in.CollegeWebsite,
		Address:  in.CollegeAddress,
		Status:   model.CollegePending,
	}
	if in.AllowedEmailDomain != "" {
		college.AllowedEmailDomain = &in.AllowedEmailDomain
	}
	user := &model.User{
		Name:                         in.Name,
		Email:                        in.Email,
		PasswordHash:                 hash,
		Role:                         model.RolePendingAdmin,
		EmailVerificationToken:       &verification.Token,
		EmailVerificationTokenExpiry: &verification.ExpiresAt,
	}
	app := &model.AdminApplication{
		Position:                in.Position,
		VerificationDocumentURL: in.VerificationDocumentURL,
		Status:                  model.ApplicationPending,
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Colleges().Create(ctx, college); err != nil {
			return err
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		app.UserID = user.ID
		app.CollegeID = college.ID
		return tx.AdminApplications().Create(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	err = s.mailer.Send(ctx, mail.Message{
		Kind: mail.KindVerification,
		To:   user.Email,
		Data: map[string]string{"Name": user.Name, "Token": verification.Token},
	})
	if err != nil {
		s.log.Error("failed to send verification email, undoing application",
			zap.String("email", user.Email), zap.Error(err))
		prometheus.RecordEmail(string(mail.KindVerification), "failed")
		s.compensateApply(ctx, app.ID, user.ID, college.ID)
		return nil, apperr.Dependency("failed to send verification email")
	}
	prometheus.RecordEmail(string(mail.KindVerification), "sent")

	s.notifySuperAdmins(ctx, user, college, app)
	prometheus.RecordAdminApplicationEvent("submitted")

	s.log.Info("admin application submitted",
		zap.Uint("application_id", app.ID),
		zap.String("college", college.Name))
	app.User = *user
	app.College = *college
	return app, nil
}

// compensateApply deletes the rows a failed Apply left behind, children
// first. Failures are logged with the orphaned ids and otherwise accepted.
func (s *AdminApplications) compensateApply(ctx context.Context, appID, userID, collegeID uint) {
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.AdminApplications().Delete(ctx, appID); err != nil {
			return err
		}
		if err := tx.Users().Delete(ctx, userID); err != nil {
			return err
		}
		return tx.Colleges().Delete(ctx, collegeID)
	})
	if err != nil {
		s.log.Error("application compensation failed, orphaned rows remain",
			zap.Uint("application_id", appID),
			zap.Uint("user_id", userID),
			zap.Uint("college_id", collegeID),
			zap.Error(err))
	}
}

// notifySuperAdmins is best effort: a delivery failure never fails the
// application itself.
func (s *AdminApplications) notifySuperAdmins(ctx context.Context, applicant *model.User, college *model.College, app *model.AdminApplication) {
	supers, err := s.store.Users().ListByRole(ctx, model.RoleSuperAdmin)
	if err != nil {
		s.log.Error("failed to list super admins for notification", zap.Error(err))
		return
	}
	for _, admin := range supers {
		err := s.mailer.Send(ctx, mail.Message{
			Kind: mail.KindApplicationNotification,
			To:   admin.Email,
			Data: map[string]string{
				"Name":           admin.Name,
				"ApplicantName":  applicant.Name,
				"ApplicantEmail": applicant.Email,
				"CollegeName":    college.Name,
				"ApplicationID":  strconv.FormatUint(uint64(app.ID), 10),
			},
		})
		if err != nil {
			s.log.Warn("failed to notify super admin of new application",
				zap.String("email", admin.Email), zap.Error(err))
			prometheus.RecordEmail(string(mail.KindApplicationNotification), "failed")
			continue
		}
		prometheus.RecordEmail(string(mail.KindApplicationNotification), "sent")
	}
}

// List returns applications, optionally filtered by status.
func (s *AdminApplications) List(ctx context.Context, p principal.Principal, status *model.ApplicationStatus) ([]model.AdminApplication, error) {
	if err := access.Can(p, access.ActionReviewApplications, access.System()).Err(); err != nil {
		return nil, err
	}
	return s.store.AdminApplications().List(ctx, status)
}

func (s *AdminApplications) Get(ctx context.Context, p principal.Principal, id uint) (*model.AdminApplication, error) {
	if err := access.Can(p, access.ActionReviewApplications, access.System()).Err(); err != nil {
		return nil, err
	}
	app, err := s.store.AdminApplications().ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("application not found")
		}
		return nil, err
	}
	return app, nil
}

// Review resolves a pending application. Approval promotes the user to
// ADMIN, activates the college, and creates the admin link row in the same
// transaction; rejection marks both the application and the college
// REJECTED. An application that has left PENDING cannot be reviewed again.
func (s *AdminApplications) Review(ctx context.Context, p principal.Principal, id uint, decision model.ApplicationStatus, comments string) (*model.AdminApplication, error) {
	if err := access.Can(p, access.ActionReviewApplications, access.System()).Err(); err != nil {
		return nil, err
	}
	if decision != model.ApplicationApproved && decision != model.ApplicationRejected {
		return nil, apperr.Validation("decision must be APPROVED or REJECTED")
	}

	app, err := s.store.AdminApplications().ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("application not found")
		}
		return nil, err
	}
	if app.Status != model.ApplicationPending {
		return nil, apperr.Conflict("application has already been reviewed")
	}

	now := time.Now()
	app.Status = decision
	app.ReviewedBy = &p.UserID
	app.ReviewedAt = &now
	app.ReviewComments = comments

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.AdminApplications().Update(ctx, app); err != nil {
			return err
		}
		college, err := tx.Colleges().ByID(ctx, app.CollegeID)
		if err != nil {
			return err
		}
		if decision == model.ApplicationApproved {
			user, err := tx.Users().ByID(ctx, app.UserID)
			if err != nil {
				return err
			}
			user.Role = model.RoleAdmin
			if err := tx.Users().Update(ctx, user); err != nil {
				return err
			}
			college.Status = model.CollegeActive
			if err := tx.Colleges().Update(ctx, college); err != nil {
				return err
			}
			return tx.Admins().Create(ctx, &model.Admin{
				UserID:      app.UserID,
				CollegeID:   app.CollegeID,
				Description: app.Position,
			})
		}
		college.Status = model.CollegeRejected
		return tx.Colleges().Update(ctx, college)
	})
	if err != nil {
		return nil, err
	}

	s.notifyApplicant(ctx, app, decision, comments)

	if decision == model.ApplicationApproved {
		prometheus.RecordAdminApplicationEvent("approved")
	} else {
		prometheus.RecordAdminApplicationEvent("rejected")
	}
	s.log.Info("admin application reviewed",
		zap.Uint("application_id", app.ID),
		zap.String("decision", string(decision)),
		zap.Uint("reviewed_by", p.UserID))
	return app, nil
}

func (s *AdminApplications) notifyApplicant(ctx context.Context, app *model.AdminApplication, decision model.ApplicationStatus, comments string) {
	kind := mail.KindAdminApproval
	if decision == model.ApplicationRejected {
		kind = mail.KindAdminRejection
	}
	err := s.mailer.Send(ctx, mail.Message{
		Kind: kind,
		To:   app.User.Email,
		Data: map[string]string{
			"Name":        app.User.Name,
			"CollegeName": app.College.Name,
			"Comments":    comments,
		},
	})
	if err != nil {
		s.log.Warn("failed to send review outcome email",
			zap.Uint("application_id", app.ID), zap.Error(err))
		prometheus.RecordEmail(string(kind), "failed")
		return
	}
	prometheus.RecordEmail(string(kind), "sent")
}
