package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/coursemart/internal/errs"
	"github.com/and161185/coursemart/internal/model"
	"github.com/and161185/coursemart/internal/repository"
)

// CourseInput carries every editable course field. Each field must be
// present in the payload; zero values such as "" or 0 are accepted.
type CourseInput struct {
	Title       *string  `json:"title" validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required"`
	Published   *bool    `json:"published" validate:"required"`
	ImageLink   *string  `json:"imageLink" validate:"required"`
}

func (in CourseInput) course(id uuid.UUID) model.Course {
	return model.Course{
		ID:          id,
		Title:       *in.Title,
		Description: *in.Description,
		Price:       *in.Price,
		Published:   *in.Published,
		ImageLink:   *in.ImageLink,
	}
}

// CourseService defines catalog management and purchasing.
type CourseService interface {
	// Create adds a course and returns its generated ID.
	Create(ctx context.Context, in CourseInput) (uuid.UUID, error)
	// Update replaces every field of a course except its ID.
	Update(ctx context.Context, id uuid.UUID, in CourseInput) error
	// ListAll returns the full catalog.
	ListAll(ctx context.Context) ([]model.Course, error)
	// ListPublished returns only published courses.
	ListPublished(ctx context.Context) ([]model.Course, error)
	// Purchase adds a published course to the user's purchases.
	Purchase(ctx context.Context, id uuid.UUID, username string) error
	// ListPurchased returns the user's purchased courses in purchase order.
	ListPurchased(ctx context.Context, username string) ([]model.Course, error)
}

type CourseServiceImpl struct {
	courses    repository.CourseRepository
	principals repository.PrincipalRepository
	log        *zap.Logger
}

var _ CourseService = (*CourseServiceImpl)(nil)

// NewCourseService constructs CourseService.
func NewCourseService(courses repository.CourseRepository, principals repository.PrincipalRepository, log *zap.Logger) *CourseServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &CourseServiceImpl{courses: courses, principals: principals, log: log}
}

// Create validates input, generates a UUIDv4 and stores the course.
func (s *CourseServiceImpl) Create(ctx context.Context, in CourseInput) (uuid.UUID, error) {
	if err := check(in); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	c := in.course(id)
	if err := s.courses.Create(ctx, &c); err != nil {
		return uuid.Nil, fmt.Errorf("create course: %w", err)
	}
	s.log.Info("course created", zap.Stringer("courseId", id), zap.String("title", c.Title))
	return id, nil
}

// Update validates input and replaces the course in place.
func (s *CourseServiceImpl) Update(ctx context.Context, id uuid.UUID, in CourseInput) error {
	if err := check(in); err != nil {
		return err
	}
	if id == uuid.Nil {
		return errs.ErrNotFound
	}
	c := in.course(id)
	if err := s.courses.Update(ctx, &c); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// ListAll returns every course.
func (s *CourseServiceImpl) ListAll(ctx context.Context) ([]model.Course, error) {
	return s.courses.List(ctx)
}

// ListPublished returns courses with Published set.
func (s *CourseServiceImpl) ListPublished(ctx context.Context) ([]model.Course, error) {
	all, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Course, 0, len(all))
	for _, c := range all {
		if c.Published {
			out = append(out, c)
		}
	}
	return out, nil
}

// Purchase records the course for username. Unpublished courses are reported
// as not found.
func (s *CourseServiceImpl) Purchase(ctx context.Context, id uuid.UUID, username string) error {
	c, err := s.courses.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("purchase: %w", err)
	}
	if !c.Published {
		return fmt.Errorf("purchase: unpublished: %w", errs.ErrNotFound)
	}
	if err := s.principals.AddCourse(ctx, username, id); err != nil {
		return fmt.Errorf("purchase: %w", err)
	}
	s.log.Info("course purchased", zap.Stringer("courseId", id), zap.String("username", username))
	return nil
}

// ListPurchased resolves the user's purchased IDs against the catalog,
// skipping IDs that no longer resolve.
func (s *CourseServiceImpl) ListPurchased(ctx context.Context, username string) ([]model.Course, error) {
	u, err := s.principals.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list purchased: %w", err)
	}
	all, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.Course, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	out := make([]model.Course, 0, len(u.Courses))
	for _, id := range u.Courses {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
