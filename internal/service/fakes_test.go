package service

import (
	"context"
	"slices"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/coursemart/internal/errs"
	"github.com/and161185/coursemart/internal/limiter"
	"github.com/and161185/coursemart/internal/model"
	"github.com/and161185/coursemart/internal/repository"
)

type fakePrincipals struct {
	users  map[string]*model.User
	admins map[string]*model.Admin

	createErr error
	getErr    error
}

var _ repository.PrincipalRepository = (*fakePrincipals)(nil)

func newFakePrincipals() *fakePrincipals {
	return &fakePrincipals{users: map[string]*model.User{}, admins: map[string]*model.Admin{}}
}

func (f *fakePrincipals) taken(name string) bool {
	_, u := f.users[name]
	_, a := f.admins[name]
	return u || a
}

func (f *fakePrincipals) CreateUser(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.taken(u.Username) {
		return errs.ErrAlreadyExists
	}
	cp := *u
	cp.Courses = []uuid.UUID{}
	f.users[u.Username] = &cp
	return nil
}

func (f *fakePrincipals) CreateAdmin(_ context.Context, a *model.Admin) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.taken(a.Username) {
		return errs.ErrAlreadyExists
	}
	cp := *a
	f.admins[a.Username] = &cp
	return nil
}

func (f *fakePrincipals) GetUser(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	c.Courses = slices.Clone(u.Courses)
	return &c, nil
}

func (f *fakePrincipals) GetAdmin(_ context.Context, username string) (*model.Admin, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.admins[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakePrincipals) AddCourse(_ context.Context, username string, id uuid.UUID) error {
	u, ok := f.users[username]
	if !ok {
		return errs.ErrNotFound
	}
	if u.Owns(id) {
		return errs.ErrAlreadyPurchased
	}
	u.Courses = append(u.Courses, id)
	return nil
}

type fakeCourses struct {
	list    []model.Course
	listErr error
}

var _ repository.CourseRepository = (*fakeCourses)(nil)

func (f *fakeCourses) Create(_ context.Context, c *model.Course) error {
	for _, e := range f.list {
		if e.Title == c.Title {
			return errs.ErrDuplicateTitle
		}
	}
	f.list = append(f.list, *c)
	return nil
}

func (f *fakeCourses) Update(_ context.Context, c *model.Course) error {
	for i := range f.list {
		if f.list[i].ID == c.ID {
			f.list[i] = *c
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeCourses) List(context.Context) ([]model.Course, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.list), nil
}

func (f *fakeCourses) Get(_ context.Context, id uuid.UUID) (*model.Course, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	for _, c := range f.list {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}
