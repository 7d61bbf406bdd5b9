package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"campushire/internal/apperr"
	"campushire/internal/model"
	"campushire/internal/service"
)

func TestCreateJobAndList(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	adminUser, admin := f.collegeAdmin("admin@test.edu", college)
	p := adminPrincipal(adminUser, admin)

	job, err := f.jobs.Create(context.Background(), p, service.CreateJobInput{
		Title:       "Campus Ambassador",
		Description: "Represent us on campus",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if job.Status != model.JobActive {
		t.Errorf("status = %s, want ACTIVE", job.Status)
	}
	if job.CollegeID != college.ID {
		t.Errorf("college = %d, want %d", job.CollegeID, college.ID)
	}

	jobs, err := f.jobs.List(context.Background(), p, nil, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("jobs = %d, want 1", len(jobs))
	}
}

func TestCreateJobDeniedForSuperAdmin(t *testing.T) {
	f := newFixture()

	_, err := f.jobs.Create(context.Background(), superAdminPrincipal(1), service.CreateJobInput{Title: "Nope"})
	if !apperr.IsStatus(err, http.StatusForbidden) {
		t.Fatalf("expected 403 for super admin posting, got %v", err)
	}
}

func TestStudentAppliesOnce(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	adminUser, admin := f.collegeAdmin("admin@test.edu", college)
	studentUser, student := f.verifiedStudent("alice@test.edu", college)

	job, err := f.jobs.Create(context.Background(), adminPrincipal(adminUser, admin), service.CreateJobInput{Title: "Intern"})
	if err != nil {
		t.Fatal(err)
	}

	p := studentPrincipal(studentUser, student)
	app, err := f.jobs.Apply(context.Background(), p, job.ID, "https://example.com/resume.pdf")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if app.Status != model.JobApplicationApplied {
		t.Errorf("status = %s, want APPLIED", app.Status)
	}

	// The (job, student) pair is unique.
	if _, err := f.jobs.Apply(context.Background(), p, job.ID, ""); !apperr.IsStatus(err, http.StatusConflict) {
		t.Fatalf("expected 409 for second apply, got %v", err)
	}
}

func TestApplyToExpiredJob(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	adminUser, admin := f.collegeAdmin("admin@test.edu", college)
	studentUser, student := f.verifiedStudent("alice@test.edu", college)

	yesterday := time.Now().Add(-24 * time.Hour)
	job, err := f.jobs.Create(context.Background(), adminPrincipal(adminUser, admin), service.CreateJobInput{
		Title:     "Expired Role",
		ExpiresAt: &yesterday,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.jobs.Apply(context.Background(), studentPrincipal(studentUser, student), job.ID, "")
	if !apperr.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400 for expired job, got %v", err)
	}
	if err.Error() != "job posting has expired" {
		t.Errorf("message = %q, want %q", err.Error(), "job posting has expired")
	}
}

func TestApplyToClosedJob(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	adminUser, admin := f.collegeAdmin("admin@test.edu", college)
	studentUser, student := f.verifiedStudent("alice@test.edu", college)
	adminP := adminPrincipal(adminUser, admin)

	job, err := f.jobs.Create(context.Background(), adminP, service.CreateJobInput{Title: "Closing Soon"})
	if err != nil {
		t.Fatal(err)
	}
	closed := model.JobClosed
	if _, err := f.jobs.Update(context.Background(), adminP, job.ID, service.UpdateJobInput{Status: &closed}); err != nil {
		t.Fatal(err)
	}

	_, err = f.jobs.Apply(context.Background(), studentPrincipal(studentUser, student), job.ID, "")
	if !apperr.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400 for closed job, got %v", err)
	}
}

func TestApplyCrossCollegeDenied(t *testing.T) {
	f := newFixture()
	collegeA := f.activeCollege("College A")
	collegeB := f.activeCollege("College B")
	adminUser, admin := f.collegeAdmin("admin@a.edu", collegeA)
	studentUser, student := f.verifiedStudent("bob@b.edu", collegeB)

	job, err := f.jobs.Create(context.Background(), adminPrincipal(adminUser, admin), service.CreateJobInput{Title: "A Only"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.jobs.Apply(context.Background(), studentPrincipal(studentUser, student), job.ID, "")
	if !apperr.IsStatus(err, http.StatusForbidden) {
		t.Fatalf("expected 403 for cross-college apply, got %v", err)
	}
}

func TestAdminCannotManageOtherCollegesJobs(t *testing.T) {
	f := newFixture()
	collegeA := f.activeCollege("College A")
	collegeB := f.activeCollege("College B")
	adminAUser, adminA := f.collegeAdmin("admin@a.edu", collegeA)
	adminBUser, adminB := f.collegeAdmin("admin@b.edu", collegeB)

	job, err := f.jobs.Create(context.Background(), adminPrincipal(adminAUser, adminA), service.CreateJobInput{Title: "A Only"})
	if err != nil {
		t.Fatal(err)
	}

	pB := adminPrincipal(adminBUser, adminB)
	title := "Hijacked"
	if _, err := f.jobs.Update(context.Background(), pB, job.ID, service.UpdateJobInput{Title: &title}); !apperr.IsStatus(err, http.StatusForbidden) {
		t.Errorf("expected 403 updating foreign job, got %v", err)
	}
	if err := f.jobs.Delete(context.Background(), pB, job.ID); !apperr.IsStatus(err, http.StatusForbidden) {
		t.Errorf("expected 403 deleting foreign job, got %v", err)
	}
	if _, err := f.jobs.ListApplications(context.Background(), pB, job.ID); !apperr.IsStatus(err, http.StatusForbidden) {
		t.Errorf("expected 403 listing foreign applications, got %v", err)
	}
}

func TestUpdateApplicationStatusIsUnordered(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	adminUser, admin := f.collegeAdmin("admin@test.edu", college)
	studentUser, student := f.verifiedStudent("alice@test.edu", college)
	adminP := adminPrincipal(adminUser, admin)

	job, err := f.jobs.Create(context.Background(), adminP, service.CreateJobInput{Title: "Intern"})
	if err != nil {
		t.Fatal(err)
	}
	app, err := f.jobs.Apply(context.Background(), studentPrincipal(studentUser, student), job.ID, "")
	if err != nil {
		t.Fatal(err)
	}

	// No state machine: APPLIED can jump straight to ACCEPTED.
	updated, err := f.jobs.UpdateApplicationStatus(context.Background(), adminP, job.ID, app.ID, model.JobApplicationAccepted)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != model.JobApplicationAccepted {
		t.Errorf("status = %s, want ACCEPTED", updated.Status)
	}

	// Moving from a terminal-looking state back is allowed too.
	if _, err := f.jobs.UpdateApplicationStatus(context.Background(), adminP, job.ID, app.ID, model.JobApplicationApplied); err != nil {
		t.Errorf("reverting status should be allowed: %v", err)
	}
}

func TestUpdateApplicationStatusRejectsUnknownValue(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	adminUser, admin := f.collegeAdmin("admin@test.edu", college)
	studentUser, student := f.verifiedStudent("alice@test.edu", college)
	adminP := adminPrincipal(adminUser, admin)

	job, err := f.jobs.Create(context.Background(), adminP, service.CreateJobInput{Title: "Intern"})
	if err != nil {
		t.Fatal(err)
	}
	app, err := f.jobs.Apply(context.Background(), studentPrincipal(studentUser, student), job.ID, "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.jobs.UpdateApplicationStatus(context.Background(), adminP, job.ID, app.ID, "SHORTLISTED"); !apperr.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400 for unknown status, got %v", err)
	}

	got, err := f.jobs.ListApplications(context.Background(), adminP, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Status != model.JobApplicationApplied {
		t.Errorf("status = %s, want APPLIED untouched", got[0].Status)
	}
}

func TestMyApplications(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	adminUser, admin := f.collegeAdmin("admin@test.edu", college)
	studentUser, student := f.verifiedStudent("alice@test.edu", college)

	job, err := f.jobs.Create(context.Background(), adminPrincipal(adminUser, admin), service.CreateJobInput{Title: "Intern"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.jobs.Apply(context.Background(), studentPrincipal(studentUser, student), job.ID, ""); err != nil {
		t.Fatal(err)
	}

	apps, err := f.jobs.MyApplications(context.Background(), studentPrincipal(studentUser, student))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("applications = %d, want 1", len(apps))
	}
	if apps[0].Job.Title != "Intern" {
		t.Errorf("job title = %q, want Intern", apps[0].Job.Title)
	}

	// Admins have no applications of their own.
	if _, err := f.jobs.MyApplications(context.Background(), adminPrincipal(adminUser, admin)); !apperr.IsStatus(err, http.StatusForbidden) {
		t.Errorf("expected 403 for admin, got %v", err)
	}
}

func TestSuperAdminCannotReadCollegeJobs(t *testing.T) {
	f := newFixture()
	college := f.activeCollege("Test College")
	adminUser, admin := f.collegeAdmin("admin@test.edu", college)

	job, err := f.jobs.Create(context.Background(), adminPrincipal(adminUser, admin), service.CreateJobInput{Title: "Intern"})
	if err != nil {
		t.Fatal(err)
	}

	super := superAdminPrincipal(99)
	if _, err := f.jobs.Get(context.Background(), super, job.ID); !apperr.IsStatus(err, http.StatusForbidden) {
		t.Errorf("expected 403 for super admin reading a job, got %v", err)
	}
	if _, err := f.jobs.List(context.Background(), super, nil, ""); !apperr.IsStatus(err, http.StatusForbidden) {
		t.Errorf("expected 403 for super admin listing jobs, got %v", err)
	}
}
