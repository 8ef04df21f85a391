package repository

import (
	"context"

	"github.com/and161185/coursemart/internal/model"
	"github.com/gofrs/uuid/v5"
)

// CourseRepository provides access to the course catalog.
type CourseRepository interface {
	// Create inserts a course; errs.ErrDuplicateTitle if the title is taken.
	Create(ctx context.Context, c *model.Course) error
	// Update replaces every field but the ID; errs.ErrNotFound for unknown IDs.
	Update(ctx context.Context, c *model.Course) error
	// List returns all courses in catalog order.
	List(ctx context.Context) ([]model.Course, error)
	// Get returns a single course by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Course, error)
}
