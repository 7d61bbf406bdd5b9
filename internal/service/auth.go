package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"campushire/internal/apperr"
	"campushire/internal/auth"
	"campushire/internal/mail"
	"campushire/internal/model"
	"campushire/internal/store"
	"campushire/pkg/config"

	"go.uber.org/zap"
)

// Auth owns registration, the session token lifecycle, and the single-use
// email tokens.
type Auth struct {
	store   store.Store
	jwt     *auth.JWTUtil
	hasher  *auth.Hasher
	mailer  mail.Mailer
	oneTime config.OneTimeTokenConfig
	log     *zap.Logger
}

func NewAuth(st store.Store, jwt *auth.JWTUtil, hasher *auth.Hasher, mailer mail.Mailer, oneTime config.OneTimeTokenConfig, log *zap.Logger) *Auth {
	return &Auth{store: st, jwt: jwt, hasher: hasher, mailer: mailer, oneTime: oneTime, log: log}
}

// RegisterInput carries a student registration request. Direct admin
// registration is rejected; admins arrive through the application flow.
type RegisterInput struct {
	Name         string
	Email        string
	CollegeEmail string
	Password     string
	Role         model.Role
	CollegeID    uint
}

func (s *Auth) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Role == model.RoleAdmin || in.Role == model.RoleSuperAdmin {
		return nil, apperr.Authorization("direct admin registration is not allowed; please apply through the admin application process")
	}
	if in.Role != model.RoleStudent {
		return nil, apperr.Validation("unsupported role")
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
		return nil, apperr.Validation("the selected college is not active")
	}
	if college.AllowedEmailDomain != nil && in.CollegeEmail != "" &&
		!strings.HasSuffix(in.CollegeEmail, *college.AllowedEmailDomain) {
		return nil, apperr.Validation("college email must end with " + *college.AllowedEmailDomain)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	verification := auth.NewOneTimeToken(s.oneTime.VerificationExpiry)

	user := &model.User{
		Name:                         in.Name,
		Email:                        in.Email,
		PasswordHash:                 hash,
		Role:                         model.RoleStudent,
		EmailVerificationToken:       &verification.Token,
		EmailVerificationTokenExpiry: &verification.ExpiresAt,
	}
	var student *model.Student

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		student = &model.Student{UserID: user.ID, CollegeID: college.ID}
		return tx.Students().Create(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	if err := s.sendVerification(ctx, user, verification.Token); err != nil {
		s.compensateRegistration(ctx, user.ID)
		return nil, apperr.Dependency("failed to send verification email")
	}

	s.log.Info("user registered",
		zap.String("email", user.Email),
		zap.Uint("college_id", college.ID))
	return user, nil
}

// compensateRegistration undoes a committed registration after the
// verification email could not be delivered. A failure here leaves orphaned
// rows; it is logged loudly and otherwise accepted.
func (s *Auth) compensateRegistration(ctx context.Context, userID uint) {
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Students().DeleteByUser(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.Users().Delete(ctx, userID)
	})
	if err != nil {
		s.log.Error("registration compensation failed, orphaned rows remain",
			zap.Uint("user_id", userID), zap.Error(err))
	}
}

// LoginResult is a fresh session: a bearer access token plus a refresh
// token the handler sets as a cookie.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *model.User
}

func (s *Auth) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.Users().ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Authentication("invalid credentials")
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperr.Authentication("invalid credentials")
	}
	if !user.IsVerified {
		return nil, apperr.Authentication("please verify your email before logging in")
	}

	access, refresh, err := s.issueSession(ctx, s.store, user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// issueSession signs the token pair and persists the refresh mirror row
func (s *Auth) issueSession(ctx context.Context, st store.Store, userID uint) (access, refresh string, err error) {
	access, err = s.jwt.GenerateAccessToken(userID)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.jwt.GenerateRefreshToken(userID)
	if err != nil {
		return "", "", err
	}
	row := &model.RefreshToken{
		Token:     refresh,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.jwt.RefreshExpiry()),
	}
	if err := st.RefreshTokens().Create(ctx, row); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// VerifyRefreshToken checks signature, expiry, and the mirror row. A token
// that was rotated away fails here by absence, which is how replay of a
// stolen old token is detected.
func (s *Auth) VerifyRefreshToken(ctx context.Context, token string) (uint, error) {
	userID, err := s.jwt.VerifyRefreshToken(token)
	if err != nil {
		return 0, apperr.Authentication("invalid or expired refresh token")
	}
	row, err := s.store.RefreshTokens().ByToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, apperr.Authentication("invalid or expired refresh token")
		}
		return 0, err
	}
	if row.UserID != userID {
		return 0, apperr.Authentication("invalid or expired refresh token")
	}
	return userID, nil
}

// Refresh rotates the presented refresh token: the old row is deleted and
// the replacement inserted in one transaction, so a crash cannot leave both
// (double grant) or neither (stranded session) live.
func (s *Auth) Refresh(ctx context.Context, presented string) (*LoginResult, error) {
	userID, err := s.VerifyRefreshToken(ctx, presented)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users().ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Authentication("user not found")
		}
		return nil, err
	}

	var access, refresh string
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.RefreshTokens().DeleteByToken(ctx, presented); err != nil {
			return err
		}
		access, refresh, err = s.issueSession(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Logout deletes the presented refresh token row; the access token simply
// ages out. The returned flag reports whether a live session row was
// actually removed, so callers only adjust session accounting for real
// logouts. The zero-time lookup matches expired rows too; those still get
// deleted.
func (s *Auth) Logout(ctx context.Context, refreshToken string) (bool, error) {
	if refreshToken == "" {
		return false, nil
	}
	if _, err := s.store.RefreshTokens().ByToken(ctx, refreshToken, time.Time{}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := s.store.RefreshTokens().DeleteByToken(ctx, refreshToken); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Auth) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.store.Users().ByVerificationToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Validation("invalid or expired verification token")
		}
		return err
	}
	if user.IsVerified {
		return nil
	}

	user.IsVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationTokenExpiry = nil
	return s.store.Users().Update(ctx, user)
}

// ResendVerification regenerates the inline token, overwriting whatever was
// outstanding. The response never reveals whether the email exists.
func (s *Auth) ResendVerification(ctx context.Context, email string) error {
	user, err := s.store.Users().ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.IsVerified {
		return nil
	}

	verification := auth.NewOneTimeToken(s.oneTime.VerificationExpiry)
	user.EmailVerificationToken = &verification.Token
	user.EmailVerificationTokenExpiry = &verification.ExpiresAt
	if err := s.store.Users().Update(ctx, user); err != nil {
		return err
	}

	if err := s.sendVerification(ctx, user, verification.Token); err != nil {
		return apperr.Dependency("failed to send verification email")
	}
	return nil
}

func (s *Auth) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.store.Users().ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	reset := auth.NewOneTimeToken(s.oneTime.PasswordResetExpiry)
	user.PasswordResetToken = &reset.Token
	user.PasswordResetTokenExpiry = &reset.ExpiresAt
	if err := s.store.Users().Update(ctx, user); err != nil {
		return err
	}

	err = s.mailer.Send(ctx, mail.Message{
		Kind: mail.KindPasswordReset,
		To:   user.Email,
		Data: map[string]string{"Name": user.Name, "Token": reset.Token},
	})
	if err != nil {
		s.log.Error("failed to send password reset email", zap.String("email", user.Email), zap.Error(err))
		return apperr.Dependency("failed to send password reset email")
	}
	return nil
}

// ResetPassword sets the new password and revokes every refresh session for
// the user in the same transaction.
func (s *Auth) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.store.Users().ByResetToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Validation("invalid or expired password reset token")
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordResetToken = nil
	user.PasswordResetTokenExpiry = nil

	return s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		return tx.RefreshTokens().DeleteByUser(ctx, user.ID)
	})
}

func (s *Auth) sendVerification(ctx context.Context, user *model.User, token string) error {
	err := s.mailer.Send(ctx, mail.Message{
		Kind: mail.KindVerification,
		To:   user.Email,
		Data: map[string]string{"Name": user.Name, "Token": token},
	})
	if err != nil {
		s.log.Error("failed to send verification email", zap.String("email", user.Email), zap.Error(err))
	}
	return err
}
