// Package filestore implements repository interfaces on top of docstore collections.
package filestore

import (
	"context"

	"github.com/and161185/coursemart/internal/docstore"
	"github.com/and161185/coursemart/internal/model"
)

// Paths locates the three collection documents.
type Paths struct {
	Users   string
	Admins  string
	Courses string
}

// Store groups the Users, Admins and Courses collections.
type Store struct {
	Users   *docstore.Collection[model.User]
	Admins  *docstore.Collection[model.Admin]
	Courses *docstore.Collection[model.Course]
}

// Open opens (and initializes if needed) all three collections.
func Open(ctx context.Context, p Paths, opts ...docstore.Option) (*Store, error) {
	users, err := docstore.Open(ctx, "users", p.Users, userKey, opts...)
	if err != nil {
		return nil, err
	}
	admins, err := docstore.Open(ctx, "admins", p.Admins, adminKey, opts...)
	if err != nil {
		return nil, err
	}
	courses, err := docstore.Open(ctx, "courses", p.Courses, courseKey, opts...)
	if err != nil {
		return nil, err
	}
	return &Store{Users: users, Admins: admins, Courses: courses}, nil
}

func userKey(u model.User) string     { return u.Username }
func adminKey(a model.Admin) string   { return a.Username }
func courseKey(c model.Course) string { return c.ID.String() }
