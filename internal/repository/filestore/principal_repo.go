package filestore

import (
	"context"
	"slices"

	"github.com/and161185/coursemart/internal/docstore"
	"github.com/and161185/coursemart/internal/errs"
	"github.com/and161185/coursemart/internal/model"
	"github.com/gofrs/uuid/v5"
)

// PrincipalRepo implements PrincipalRepository over the users and admins collections.
type PrincipalRepo struct{ st *Store }

// NewPrincipalRepo constructs a principal repository.
func NewPrincipalRepo(st *Store) *PrincipalRepo { return &PrincipalRepo{st: st} }

// CreateUser inserts a user with an empty purchase set.
func (r *PrincipalRepo) CreateUser(ctx context.Context, u *model.User) error {
	cp := *u
	cp.Courses = []uuid.UUID{}
	return r.withPrincipals(ctx, func(admins *docstore.Snapshot[model.Admin], users *docstore.Snapshot[model.User]) error {
		if admins.Has(cp.Username) || users.Has(cp.Username) {
			return errs.ErrAlreadyExists
		}
		users.Put(cp)
		return nil
	})
}

// CreateAdmin inserts an admin.
func (r *PrincipalRepo) CreateAdmin(ctx context.Context, a *model.Admin) error {
	cp := *a
	return r.withPrincipals(ctx, func(admins *docstore.Snapshot[model.Admin], users *docstore.Snapshot[model.User]) error {
		if admins.Has(cp.Username) || users.Has(cp.Username) {
			return errs.ErrAlreadyExists
		}
		admins.Put(cp)
		return nil
	})
}

// withPrincipals holds both write locks, admins first, so the cross-role
// uniqueness check and the insert are one critical section.
func (r *PrincipalRepo) withPrincipals(ctx context.Context, fn func(*docstore.Snapshot[model.Admin], *docstore.Snapshot[model.User]) error) error {
	return r.st.Admins.Update(ctx, func(admins *docstore.Snapshot[model.Admin]) error {
		return r.st.Users.Update(ctx, func(users *docstore.Snapshot[model.User]) error {
			return fn(admins, users)
		})
	})
}

// GetUser selects a user by username.
func (r *PrincipalRepo) GetUser(ctx context.Context, username string) (*model.User, error) {
	s, err := r.st.Users.Load(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := s.Get(username)
	if !ok {
		return nil, errs.ErrNotFound
	}
	u.Courses = slices.Clone(u.Courses)
	return &u, nil
}

// GetAdmin selects an admin by username.
func (r *PrincipalRepo) GetAdmin(ctx context.Context, username string) (*model.Admin, error) {
	s, err := r.st.Admins.Load(ctx)
	if err != nil {
		return nil, err
	}
	a, ok := s.Get(username)
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &a, nil
}

// AddCourse appends courseID to the user's purchases unless already present.
func (r *PrincipalRepo) AddCourse(ctx context.Context, username string, courseID uuid.UUID) error {
	return r.st.Users.Update(ctx, func(users *docstore.Snapshot[model.User]) error {
		u, ok := users.Get(username)
		if !ok {
			return errs.ErrNotFound
		}
		if u.Owns(courseID) {
			return errs.ErrAlreadyPurchased
		}
		u.Courses = append(slices.Clone(u.Courses), courseID)
		users.Put(u)
		return nil
	})
}
