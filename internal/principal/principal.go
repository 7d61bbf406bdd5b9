// Package principal resolves an authenticated user id into the actor every
// authorization decision is evaluated against.
package principal

import "campushire/internal/model"

// Profile is the role-attached scope, a closed set: Student, Admin, or
// SuperAdmin. Evaluators type-switch over it exhaustively instead of
// comparing role strings.
type Profile interface {
	profile()
}

// Student scopes the actor to their college.
type Student struct {
	StudentID   uint
	CollegeID   uint
	CollegeName string
}

// Admin scopes the actor to the college they administer. IsSystemAdmin
// distinguishes the platform operator's admin row (attached to the system
// college) from a tenant admin.
type Admin struct {
	AdminID       uint
	CollegeID     uint
	CollegeName   string
	IsSystemAdmin bool
}

// SuperAdmin is system-wide scope. CollegeID references the system college
// when the operator has an admin row; it is zero otherwise.
type SuperAdmin struct {
	AdminID   uint
	CollegeID uint
}

func (Student) profile()    {}
func (Admin) profile()      {}
func (SuperAdmin) profile() {}

// Principal is the resolved actor. Profile is nil when the role expects a
// profile row that does not exist; operations treat that as a
// data-integrity failure, not a normal denial.
type Principal struct {
	UserID  uint
	Name    string
	Email   string
	Role    model.Role
	Profile Profile
}

func (p Principal) IsSuperAdmin() bool {
	_, ok := p.Profile.(SuperAdmin)
	return ok
}

// StudentProfile returns the student scope when present
func (p Principal) StudentProfile() (Student, bool) {
	s, ok := p.Profile.(Student)
	return s, ok
}

// AdminProfile returns the admin scope when present
func (p Principal) AdminProfile() (Admin, bool) {
	a, ok := p.Profile.(Admin)
	return a, ok
}
