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

func applyInput(email, collegeName string) service.ApplyInput {
	return service.ApplyInput{
		Name:        "Applicant",
		Email:       email,
		Password:    "password123",
		Position:    "Placement Officer",
		CollegeName: collegeName,
	}
}

func TestApplyCreatesPendingRows(t *testing.T) {
	f := newFixture()

	app, err := f.apps.Apply(context.Background(), applyInput("dean@newcollege.edu", "New College"))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if app.Status != model.ApplicationPending {
		t.Errorf("application status = %s, want PENDING", app.Status)
	}

	user, err := f.store.Users().ByEmail(context.Background(), "dean@newcollege.edu")
	if err != nil {
		t.Fatalf("pending user missing: %v", err)
	}
	if user.Role != model.RolePendingAdmin {
		t.Errorf("user role = %s, want PENDING_ADMIN", user.Role)
	}

	college, err := f.store.Colleges().ByNameInsensitive(context.Background(), "new college")
	if err != nil {
		t.Fatalf("pending college missing: %v", err)
	}
	if college.Status != model.CollegePending {
		t.Errorf("college status = %s, want PENDING", college.Status)
	}

	if got := len(f.mailer.sentOfKind(mail.KindVerification)); got != 1 {
		t.Errorf("verification emails = %d, want 1", got)
	}
}

func TestApplyNotifiesSuperAdmins(t *testing.T) {
	f := newFixture()
	if _, err := f.setup.InitialSetup(context.Background(), service.SetupInput{
		Name: "Operator", Email: "operator@campushire.io", Password: "password123",
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := f.apps.Apply(context.Background(), applyInput("dean@newcollege.edu", "New College")); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got := len(f.mailer.sentOfKind(mail.KindApplicationNotification)); got != 1 {
		t.Errorf("super admin notifications = %d, want 1", got)
	}
}

func TestApplyDuplicateCollegeNameConflict(t *testing.T) {
	f := newFixture()
	f.activeCollege("Existing College")

	_, err := f.apps.Apply(context.Background(), applyInput("dean@other.edu", "existing college"))
	if !apperr.IsStatus(err, http.StatusConflict) {
		t.Fatalf("expected 409 for duplicate college name, got %v", err)
	}
}

func TestApplyEmailFailureCompensates(t *testing.T) {
	f := newFixture()
	f.mailer.failKinds[mail.KindVerification] = true

	_, err := f.apps.Apply(context.Background(), applyInput("dean@newcollege.edu", "New College"))
	if !apperr.IsStatus(err, http.StatusBadGateway) {
		t.Fatalf("expected 502 on email failure, got %v", err)
	}

	if _, err := f.store.Users().ByEmail(context.Background(), "dean@newcollege.edu"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user should have been removed, got %v", err)
	}
	if _, err := f.store.Colleges().ByNameInsensitive(context.Background(), "New College"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("college should have been removed, got %v", err)
	}
	apps, err := f.store.AdminApplications().List(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(apps) != 0 {
		t.Errorf("applications = %d, want 0", len(apps))
	}
}

func TestReviewApproveActivatesEverything(t *testing.T) {
	f := newFixture()
	super := superAdminPrincipal(99)

	app, err := f.apps.Apply(context.Background(), applyInput("dean@newcollege.edu", "New College"))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	reviewed, err := f.apps.Review(context.Background(), super, app.ID, model.ApplicationApproved, "looks good")
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.Status != model.ApplicationApproved {
		t.Errorf("status = %s, want APPROVED", reviewed.Status)
	}
	if reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != super.UserID {
		t.Error("reviewer should be recorded")
	}

	user, err := f.store.Users().ByID(context.Background(), app.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("user role = %s, want ADMIN", user.Role)
	}

	college, err := f.store.Colleges().ByID(context.Background(), app.CollegeID)
	if err != nil {
		t.Fatal(err)
	}
	if college.Status != model.CollegeActive {
		t.Errorf("college status = %s, want ACTIVE", college.Status)
	}

	admin, err := f.store.Admins().ByUserID(context.Background(), app.UserID)
	if err != nil {
		t.Fatalf("admin row missing: %v", err)
	}
	if admin.CollegeID != app.CollegeID {
		t.Errorf("admin college = %d, want %d", admin.CollegeID, app.CollegeID)
	}

	if got := len(f.mailer.sentOfKind(mail.KindAdminApproval)); got != 1 {
		t.Errorf("approval emails = %d, want 1", got)
	}
}

func TestReviewRejectMarksCollegeRejected(t *testing.T) {
	f := newFixture()
	super := superAdminPrincipal(99)

	app, err := f.apps.Apply(context.Background(), applyInput("dean@newcollege.edu", "New College"))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if _, err := f.apps.Review(context.Background(), super, app.ID, model.ApplicationRejected, "no accreditation"); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	college, err := f.store.Colleges().ByID(context.Background(), app.CollegeID)
	if err != nil {
		t.Fatal(err)
	}
	if college.Status != model.CollegeRejected {
		t.Errorf("college status = %s, want REJECTED", college.Status)
	}

	// The user keeps PENDING_ADMIN and never gets an admin row.
	user, err := f.store.Users().ByID(context.Background(), app.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if user.Role != model.RolePendingAdmin {
		t.Errorf("user role = %s, want PENDING_ADMIN", user.Role)
	}
	if _, err := f.store.Admins().ByUserID(context.Background(), app.UserID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("admin row should not exist, got %v", err)
	}
}

func TestReviewTwiceConflicts(t *testing.T) {
	f := newFixture()
	super := superAdminPrincipal(99)

	app, err := f.apps.Apply(context.Background(), applyInput("dean@newcollege.edu", "New College"))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := f.apps.Review(context.Background(), super, app.ID, model.ApplicationApproved, ""); err != nil {
		t.Fatalf("first review failed: %v", err)
	}

	// Neither decision may touch a reviewed application again.
	if _, err := f.apps.Review(context.Background(), super, app.ID, model.ApplicationApproved, ""); !apperr.IsStatus(err, http.StatusConflict) {
		t.Errorf("expected 409 re-approving, got %v", err)
	}
	if _, err := f.apps.Review(context.Background(), super, app.ID, model.ApplicationRejected, ""); !apperr.IsStatus(err, http.StatusConflict) {
		t.Errorf("expected 409 rejecting after approval, got %v", err)
	}
}

func TestReviewRequiresSuperAdmin(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	adminUser, admin := f.collegeAdmin("admin@test.edu", college)

	app, err := f.apps.Apply(context.Background(), applyInput("dean@newcollege.edu", "New College"))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	_, err = f.apps.Review(context.Background(), adminPrincipal(adminUser, admin), app.ID, model.ApplicationApproved, "")
	if !apperr.IsStatus(err, http.StatusForbidden) {
		t.Fatalf("expected 403 for tenant admin reviewing, got %v", err)
	}

	if _, err := f.apps.List(context.Background(), adminPrincipal(adminUser, admin), nil); !apperr.IsStatus(err, http.StatusForbidden) {
		t.Errorf("expected 403 listing applications, got %v", err)
	}
}
