// Package access holds the pure authorization decision function. Every
// domain operation consults Can before touching state; caller-supplied
// college or user ids are never trusted without it.
package access

import (
	"net/http"

	"campushire/internal/apperr"
	"campushire/internal/principal"
)

// Action names an operation class as the evaluator sees it.
type Action string

const (
	// System administration, reserved to super admins.
	ActionReviewApplications Action = "review_applications"
	ActionCreateAdmin        Action = "create_admin"
	ActionListAdmins         Action = "list_admins"
	ActionListAllColleges    Action = "list_all_colleges"

	// Tenant-scoped administration.
	ActionManageJobs     Action = "manage_jobs"
	ActionManageStudents Action = "manage_students"
	ActionManageCollege  Action = "manage_college"

	// Shared tenant reads and student operations.
	ActionViewJobs            Action = "view_jobs"
	ActionApplyToJob          Action = "apply_to_job"
	ActionViewOwnApplications Action = "view_own_applications"
)

// Resource locates what the action targets. CollegeID is zero for
// system-wide targets; OwnerUserID is set for rows owned by a single user.
type Resource struct {
	CollegeID   uint
	OwnerUserID uint
}

// InCollege targets a tenant-owned resource
func InCollege(collegeID uint) Resource {
	return Resource{CollegeID: collegeID}
}

// OwnedBy targets a user-owned row inside a tenant
func OwnedBy(collegeID, userID uint) Resource {
	return Resource{CollegeID: collegeID, OwnerUserID: userID}
}

// System targets the platform itself
func System() Resource {
	return Resource{}
}

// Decision is the evaluator verdict. Err converts a denial into the typed
// error the boundary serializes.
type Decision struct {
	Allowed bool
	Reason  string
	status  int
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason, status: http.StatusForbidden}
}

// denyIntegrity flags a data problem (missing profile row) rather than a
// policy denial.
func denyIntegrity(reason string) Decision {
	return Decision{Reason: reason, status: http.StatusBadRequest}
}

func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &apperr.Error{Status: d.status, Message: d.Reason}
}

// Can evaluates (principal, action, resource). Rules apply in order, first
// match wins.
func Can(p principal.Principal, action Action, res Resource) Decision {
	switch profile := p.Profile.(type) {
	case principal.SuperAdmin:
		switch action {
		case ActionReviewApplications, ActionCreateAdmin, ActionListAdmins, ActionListAllColleges:
			return allow()
		}
		// The system college is never a job-posting tenant, so the operator
		// is shut out of every college-specific operation.
		return deny("super admins cannot access college-specific resources; this role is for system administration only")

	case principal.Admin:
		switch action {
		case ActionManageJobs, ActionManageStudents, ActionManageCollege, ActionViewJobs:
			if res.CollegeID != profile.CollegeID {
				return deny("cross-tenant access: you can only access resources for your own college")
			}
			return allow()
		}
		return deny("insufficient role")

	case principal.Student:
		switch action {
		case ActionViewJobs, ActionApplyToJob:
			if res.CollegeID != profile.CollegeID {
				return deny("cross-tenant access: you can only access resources for your own college")
			}
			return allow()
		case ActionViewOwnApplications:
			if res.OwnerUserID != p.UserID {
				return deny("you can only access your own applications")
			}
			return allow()
		}
		return deny("insufficient role")

	case nil:
		// Role expects a profile row that was not found.
		switch p.Role {
		case "ADMIN":
			return denyIntegrity("admin is not associated with any college")
		case "STUDENT":
			return denyIntegrity("student is not associated with any college")
		}
	}

	return deny("insufficient role")
}
