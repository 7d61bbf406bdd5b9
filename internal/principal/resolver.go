package principal

import (
	"context"
	"errors"

	"campushire/internal/apperr"
	"campushire/internal/model"
	"campushire/internal/store"
)

// Resolver loads a user and their role-exclusive profile to build a
// Principal.
type Resolver struct {
	store store.Store
}

func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// Resolve builds the Principal for a verified user id. A missing profile
// row leaves Profile nil rather than failing; the access evaluator turns
// that into a data-integrity denial.
func (r *Resolver) Resolve(ctx context.Context, userID uint) (Principal, error) {
	user, err := r.store.Users().ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Principal{}, apperr.Authentication("user not found")
		}
		return Principal{}, err
	}

	p := Principal{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}

	switch user.Role {
	case model.RoleStudent:
		student, err := r.store.Students().ByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return p, nil
			}
			return Principal{}, err
		}
		p.Profile = Student{
			StudentID:   student.ID,
			CollegeID:   student.CollegeID,
			CollegeName: student.College.Name,
		}

	case model.RoleAdmin:
		admin, err := r.store.Admins().ByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return p, nil
			}
			return Principal{}, err
		}
		p.Profile = Admin{
			AdminID:       admin.ID,
			CollegeID:     admin.CollegeID,
			CollegeName:   admin.College.Name,
			IsSystemAdmin: admin.College.IsSystemCollege,
		}

	case model.RoleSuperAdmin:
		// The operator's admin row points at the system college; it may be
		// absent on partially set-up systems, which leaves the ids zero.
		scope := SuperAdmin{}
		admin, err := r.store.Admins().ByUserID(ctx, user.ID)
		if err == nil {
			scope.AdminID = admin.ID
			scope.CollegeID = admin.CollegeID
		} else if !errors.Is(err, store.ErrNotFound) {
			return Principal{}, err
		}
		p.Profile = scope
	}

	return p, nil
}
