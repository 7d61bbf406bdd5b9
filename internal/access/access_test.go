package access

import (
	"net/http"
	"testing"

	"campushire/internal/apperr"
	"campushire/internal/model"
	"campushire/internal/principal"
)

func student(userID, studentID, collegeID uint) principal.Principal {
	return principal.Principal{
		UserID:  userID,
		Role:    model.RoleStudent,
		Profile: principal.Student{StudentID: studentID, CollegeID: collegeID},
	}
}

func admin(userID, adminID, collegeID uint) principal.Principal {
	return principal.Principal{
		UserID:  userID,
		Role:    model.RoleAdmin,
		Profile: principal.Admin{AdminID: adminID, CollegeID: collegeID},
	}
}

func superAdmin(userID uint) principal.Principal {
	return principal.Principal{
		UserID:  userID,
		Role:    model.RoleSuperAdmin,
		Profile: principal.SuperAdmin{},
	}
}

func TestCan(t *testing.T) {
	tests := []struct {
		name    string
		p       principal.Principal
		action  Action
		res     Resource
		allowed bool
	}{
		{"super admin reviews applications", superAdmin(1), ActionReviewApplications, System(), true},
		{"super admin creates admins", superAdmin(1), ActionCreateAdmin, System(), true},
		{"super admin lists all colleges", superAdmin(1), ActionListAllColleges, System(), true},
		{"super admin denied job management", superAdmin(1), ActionManageJobs, InCollege(2), false},
		{"super admin denied job reads", superAdmin(1), ActionViewJobs, InCollege(2), false},
		{"super admin denied student roster", superAdmin(1), ActionManageStudents, InCollege(2), false},

		{"admin manages own jobs", admin(1, 1, 2), ActionManageJobs, InCollege(2), true},
		{"admin denied foreign jobs", admin(1, 1, 2), ActionManageJobs, InCollege(3), false},
		{"admin views own jobs", admin(1, 1, 2), ActionViewJobs, InCollege(2), true},
		{"admin manages own students", admin(1, 1, 2), ActionManageStudents, InCollege(2), true},
		{"admin denied foreign students", admin(1, 1, 2), ActionManageStudents, InCollege(3), false},
		{"admin manages own college", admin(1, 1, 2), ActionManageCollege, InCollege(2), true},
		{"admin denied system actions", admin(1, 1, 2), ActionReviewApplications, System(), false},
		{"admin denied applying to jobs", admin(1, 1, 2), ActionApplyToJob, InCollege(2), false},

		{"student views own college jobs", student(1, 1, 2), ActionViewJobs, InCollege(2), true},
		{"student denied foreign jobs", student(1, 1, 2), ActionViewJobs, InCollege(3), false},
		{"student applies in own college", student(1, 1, 2), ActionApplyToJob, InCollege(2), true},
		{"student denied foreign apply", student(1, 1, 2), ActionApplyToJob, InCollege(3), false},
		{"student views own applications", student(7, 1, 2), ActionViewOwnApplications, OwnedBy(2, 7), true},
		{"student denied others applications", student(7, 1, 2), ActionViewOwnApplications, OwnedBy(2, 8), false},
		{"student denied job management", student(1, 1, 2), ActionManageJobs, InCollege(2), false},
		{"student denied system actions", student(1, 1, 2), ActionReviewApplications, System(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Can(tt.p, tt.action, tt.res)
			if decision.Allowed != tt.allowed {
				t.Errorf("Can() = %v (%s), want allowed=%v", decision.Allowed, decision.Reason, tt.allowed)
			}
			if !tt.allowed && decision.Err() == nil {
				t.Error("denial should produce an error")
			}
			if tt.allowed && decision.Err() != nil {
				t.Errorf("allow should not produce an error: %v", decision.Err())
			}
		})
	}
}

func TestCanMissingProfileIsIntegrityFailure(t *testing.T) {
	orphanAdmin := principal.Principal{UserID: 1, Role: model.RoleAdmin}
	decision := Can(orphanAdmin, ActionManageJobs, InCollege(2))
	if decision.Allowed {
		t.Fatal("orphan admin must be denied")
	}
	if !apperr.IsStatus(decision.Err(), http.StatusBadRequest) {
		t.Errorf("expected 400 for missing profile, got %v", decision.Err())
	}

	orphanStudent := principal.Principal{UserID: 1, Role: model.RoleStudent}
	if !apperr.IsStatus(Can(orphanStudent, ActionViewJobs, InCollege(2)).Err(), http.StatusBadRequest) {
		t.Error("expected 400 for student missing profile")
	}
}

func TestDenialsAreForbidden(t *testing.T) {
	decision := Can(student(1, 1, 2), ActionViewJobs, InCollege(3))
	if !apperr.IsStatus(decision.Err(), http.StatusForbidden) {
		t.Errorf("cross-tenant denial should be 403, got %v", decision.Err())
	}
}
