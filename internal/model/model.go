// Package model defines domain entities used by services and repositories.
package model

import (
	"slices"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Role is the fixed role carried by a principal and its tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// Tokens collects an issued access token.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// Principal holds the credential fields shared by users and admins.
// The password itself is never stored.
type Principal struct {
	Username  string    `json:"username"` // unique across users and admins
	PwdHash   []byte    `json:"pwdHash"`  // Argon2id(password, SaltAuth)
	SaltAuth  []byte    `json:"saltAuth"` // per-principal auth salt
	CreatedAt time.Time `json:"createdAt"`
}

// Admin is a principal allowed to manage the catalog.
type Admin struct {
	Principal
}

// User is a principal allowed to browse and purchase published courses.
type User struct {
	Principal
	Courses []uuid.UUID `json:"courses"` // purchased course ids, no duplicates, purchase order
}

// Owns reports whether the user already purchased the course.
func (u *User) Owns(courseID uuid.UUID) bool {
	return slices.Contains(u.Courses, courseID)
}

// Course is a catalog entry. ID never changes after creation.
type Course struct {
	ID          uuid.UUID `json:"courseId"`
	Title       string    `json:"title"` // unique at creation time
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Published   bool      `json:"published"`
	ImageLink   string    `json:"imageLink"`
}
