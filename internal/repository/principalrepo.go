// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/coursemart/internal/model"
	"github.com/gofrs/uuid/v5"
)

// PrincipalRepository stores users and admins. Usernames are unique across both.
type PrincipalRepository interface {
	// CreateUser inserts a new user; errs.ErrAlreadyExists if any principal has the username.
	CreateUser(ctx context.Context, u *model.User) error
	// CreateAdmin inserts a new admin; errs.ErrAlreadyExists if any principal has the username.
	CreateAdmin(ctx context.Context, a *model.Admin) error
	// GetUser loads a user by username.
	GetUser(ctx context.Context, username string) (*model.User, error)
	// GetAdmin loads an admin by username.
	GetAdmin(ctx context.Context, username string) (*model.Admin, error)
	// AddCourse records a purchase; errs.ErrAlreadyPurchased if the user owns it already.
	AddCourse(ctx context.Context, username string, courseID uuid.UUID) error
}
