package filestore

import (
	"context"
	"fmt"

	"github.com/and161185/coursemart/internal/docstore"
	"github.com/and161185/coursemart/internal/errs"
	"github.com/and161185/coursemart/internal/model"
	"github.com/gofrs/uuid/v5"
)

// CourseRepo implements CourseRepository over the courses collection.
type CourseRepo struct{ st *Store }

// NewCourseRepo constructs a course repository.
func NewCourseRepo(st *Store) *CourseRepo { return &CourseRepo{st: st} }

// Create inserts a new course if no course has the same title.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) error {
	cp := *c
	return r.st.Courses.Update(ctx, func(courses *docstore.Snapshot[model.Course]) error {
		for _, existing := range courses.Records() {
			if existing.Title == cp.Title {
				return errs.ErrDuplicateTitle
			}
		}
		if courses.Has(courseKey(cp)) {
			return fmt.Errorf("course id %s already in use", cp.ID)
		}
		courses.Put(cp)
		return nil
	})
}

// Update replaces the stored course with the same ID. Titles are not re-checked.
func (r *CourseRepo) Update(ctx context.Context, c *model.Course) error {
	cp := *c
	return r.st.Courses.Update(ctx, func(courses *docstore.Snapshot[model.Course]) error {
		if !courses.Has(courseKey(cp)) {
			return errs.ErrNotFound
		}
		courses.Put(cp)
		return nil
	})
}

// List returns every course in document order.
func (r *CourseRepo) List(ctx context.Context) ([]model.Course, error) {
	s, err := r.st.Courses.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.Records(), nil
}

// Get selects a course by ID.
func (r *CourseRepo) Get(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	s, err := r.st.Courses.Load(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := s.Get(id.String())
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &c, nil
}
