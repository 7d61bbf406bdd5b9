package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"campushire/internal/apperr"
	"campushire/internal/mail"
	"campushire/internal/model"
	"campushire/internal/service"
	"campushire/internal/store"
)

func TestRegisterCreatesStudentAndSendsVerification(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")

	user, err := f.auth.Register(context.Background(), service.RegisterInput{
		Name:      "Alice",
		Email:     "alice@example.com",
		Password:  "password123",
		Role:      model.RoleStudent,
		CollegeID: college.ID,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.IsVerified {
		t.Error("new user should not be verified")
	}
	if user.EmailVerificationToken == nil {
		t.Error("verification token should be set")
	}

	student, err := f.store.Students().ByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("student row missing: %v", err)
	}
	if student.CollegeID != college.ID {
		t.Errorf("student college = %d, want %d", student.CollegeID, college.ID)
	}

	if got := len(f.mailer.sentOfKind(mail.KindVerification)); got != 1 {
		t.Errorf("verification emails sent = %d, want 1", got)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")

	_, err := f.auth.Register(context.Background(), service.RegisterInput{
		Name:      "Mallory",
		Email:     "mallory@example.com",
		Password:  "password123",
		Role:      model.RoleAdmin,
		CollegeID: college.ID,
	})
	if !apperr.IsStatus(err, http.StatusForbidden) {
		t.Fatalf("expected 403 for admin self-registration, got %v", err)
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	f.verifiedStudent("alice@example.com", college)

	_, err := f.auth.Register(context.Background(), service.RegisterInput{
		Name:      "Alice Again",
		Email:     "alice@example.com",
		Password:  "password123",
		Role:      model.RoleStudent,
		CollegeID: college.ID,
	})
	if !apperr.IsStatus(err, http.StatusConflict) {
		t.Fatalf("expected 409 for duplicate email, got %v", err)
	}
}

func TestRegisterInactiveCollegeRejected(t *testing.T) {
	f := newFixture()
	college := &model.College{Name: "Pending College", Status: model.CollegePending}
	if err := f.store.Colleges().Create(context.Background(), college); err != nil {
		t.Fatal(err)
	}

	_, err := f.auth.Register(context.Background(), service.RegisterInput{
		Name:      "Bob",
		Email:     "bob@example.com",
		Password:  "password123",
		Role:      model.RoleStudent,
		CollegeID: college.ID,
	})
	if !apperr.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400 for inactive college, got %v", err)
	}
}

func TestRegisterEmailFailureLeavesNoRows(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	f.mailer.failAll = true

	_, err := f.auth.Register(context.Background(), service.RegisterInput{
		Name:      "Carol",
		Email:     "carol@example.com",
		Password:  "password123",
		Role:      model.RoleStudent,
		CollegeID: college.ID,
	})
	if !apperr.IsStatus(err, http.StatusBadGateway) {
		t.Fatalf("expected 502 on email failure, got %v", err)
	}

	if _, err := f.store.Users().ByEmail(context.Background(), "carol@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user row should have been removed, got %v", err)
	}
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	user, _ := f.verifiedStudent("alice@example.com", college)
	user.IsVerified = false
	if err := f.store.Users().Update(context.Background(), user); err != nil {
		t.Fatal(err)
	}

	_, err := f.auth.Login(context.Background(), "alice@example.com", "password123")
	if !apperr.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 for unverified user, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	f.verifiedStudent("alice@example.com", college)

	if _, err := f.auth.Login(context.Background(), "alice@example.com", "wrong"); !apperr.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 for wrong password, got %v", err)
	}
	if _, err := f.auth.Login(context.Background(), "nobody@example.com", "password123"); !apperr.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 for unknown email, got %v", err)
	}
}

func TestRefreshRotationInvalidatesOldToken(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	f.verifiedStudent("alice@example.com", college)

	login, err := f.auth.Login(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	rotated, err := f.auth.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if rotated.RefreshToken == login.RefreshToken {
		t.Fatal("rotation must issue a different refresh token")
	}

	// Replaying the pre-rotation token must fail by row absence.
	if _, err := f.auth.Refresh(context.Background(), login.RefreshToken); !apperr.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 replaying rotated token, got %v", err)
	}

	// The replacement still works.
	if _, err := f.auth.Refresh(context.Background(), rotated.RefreshToken); err != nil {
		t.Fatalf("rotated token should refresh: %v", err)
	}
}

func TestLogoutDeletesRefreshToken(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	f.verifiedStudent("alice@example.com", college)

	login, err := f.auth.Login(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	removed, err := f.auth.Logout(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if !removed {
		t.Error("first logout should report a removed session")
	}
	if _, err := f.auth.Refresh(context.Background(), login.RefreshToken); !apperr.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 after logout, got %v", err)
	}

	// Replaying the same token removes nothing further.
	removed, err = f.auth.Logout(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("second logout failed: %v", err)
	}
	if removed {
		t.Error("second logout should not report a removed session")
	}
	if removed, _ := f.auth.Logout(context.Background(), ""); removed {
		t.Error("logout without a token should not report a removed session")
	}
}

func TestVerifyEmailFlow(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")

	user, err := f.auth.Register(context.Background(), service.RegisterInput{
		Name:      "Alice",
		Email:     "alice@example.com",
		Password:  "password123",
		Role:      model.RoleStudent,
		CollegeID: college.ID,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := f.auth.VerifyEmail(context.Background(), *user.EmailVerificationToken); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	verified, err := f.store.Users().ByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !verified.IsVerified {
		t.Error("user should be verified")
	}
	if verified.EmailVerificationToken != nil {
		t.Error("verification token should be cleared")
	}

	if err := f.auth.VerifyEmail(context.Background(), "bogus-token"); !apperr.IsStatus(err, http.StatusBadRequest) {
		t.Errorf("expected 400 for bad token, got %v", err)
	}
}

func TestResendVerificationOverwritesToken(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")

	user, err := f.auth.Register(context.Background(), service.RegisterInput{
		Name:      "Alice",
		Email:     "alice@example.com",
		Password:  "password123",
		Role:      model.RoleStudent,
		CollegeID: college.ID,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	first := *user.EmailVerificationToken

	if err := f.auth.ResendVerification(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("resend failed: %v", err)
	}

	// The earlier token is silently replaced and no longer usable.
	if err := f.auth.VerifyEmail(context.Background(), first); !apperr.IsStatus(err, http.StatusBadRequest) {
		t.Errorf("expected first token to be invalidated, got %v", err)
	}

	// Unknown emails get the same silent success.
	if err := f.auth.ResendVerification(context.Background(), "nobody@example.com"); err != nil {
		t.Errorf("resend for unknown email should not fail: %v", err)
	}
}

func TestPasswordResetRevokesSessions(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	f.verifiedStudent("alice@example.com", college)

	login, err := f.auth.Login(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := f.auth.RequestPasswordReset(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("request reset failed: %v", err)
	}
	user, err := f.store.Users().ByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if user.PasswordResetToken == nil {
		t.Fatal("reset token should be set")
	}

	if err := f.auth.ResetPassword(context.Background(), *user.PasswordResetToken, "newpassword456"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	// Every refresh session dies with the old password.
	if _, err := f.auth.Refresh(context.Background(), login.RefreshToken); !apperr.IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("expected 401 for revoked session, got %v", err)
	}

	if _, err := f.auth.Login(context.Background(), "alice@example.com", "password123"); !apperr.IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("old password should no longer work, got %v", err)
	}
	if _, err := f.auth.Login(context.Background(), "alice@example.com", "newpassword456"); err != nil {
		t.Errorf("new password should work: %v", err)
	}
}

func TestRequestPasswordResetUnknownEmailSilent(t *testing.T) {
	f := newFixture()
	if err := f.auth.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("unknown email should not error: %v", err)
	}
	if got := len(f.mailer.sent); got != 0 {
		t.Errorf("no email should be sent, got %d", got)
	}
}
