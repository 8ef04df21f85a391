package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/coursemart/internal/errs"
	"github.com/and161185/coursemart/internal/model"
)

func ptr[T any](v T) *T { return &v }

func input(title string, published bool) CourseInput {
	return CourseInput{
		Title:       ptr(title),
		Description: ptr("desc"),
		Price:       ptr(10.0),
		Published:   ptr(published),
		ImageLink:   ptr("https://img.example/go.png"),
	}
}

func TestCourses_Create_ValidationAndDuplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewCourseService(&fakeCourses{}, newFakePrincipals(), nil)

	missing := input("Go Basics", true)
	missing.Published = nil
	if _, err := s.Create(ctx, missing); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation on missing published, got %v", err)
	}
	noTitle := input("", true)
	noTitle.Title = nil
	if _, err := s.Create(ctx, noTitle); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation on missing title, got %v", err)
	}

	// only presence is checked: zero and empty values are accepted
	zero := input("", false)
	zero.Price = ptr(0.0)
	zero.Description = ptr("")
	zero.ImageLink = ptr("")
	if _, err := s.Create(ctx, zero); err != nil {
		t.Fatalf("Create with zero values: %v", err)
	}
	negative := input("Refund", true)
	negative.Price = ptr(-1.0)
	if _, err := s.Create(ctx, negative); err != nil {
		t.Fatalf("Create with negative price: %v", err)
	}

	id, err := s.Create(ctx, input("Go Basics", true))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == uuid.Nil || id.Version() != uuid.V4 {
		t.Fatalf("want fresh v4 id, got %s", id)
	}
	if _, err := s.Create(ctx, input("Go Basics", false)); !errors.Is(err, errs.ErrDuplicateTitle) {
		t.Fatalf("want ErrDuplicateTitle, got %v", err)
	}
}

func TestCourses_Update_PreservesID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := &fakeCourses{}
	s := NewCourseService(repo, newFakePrincipals(), nil)

	id, err := s.Create(ctx, input("Go Basics", true))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	upd := CourseInput{
		Title:       ptr("Go Basics 2"),
		Description: ptr("new"),
		Price:       ptr(25.5),
		Published:   ptr(false),
		ImageLink:   ptr("https://img.example/2.png"),
	}
	if err := s.Update(ctx, id, upd); err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := model.Course{ID: id, Title: "Go Basics 2", Description: "new", Price: 25.5, Published: false, ImageLink: "https://img.example/2.png"}
	if repo.list[0] != want {
		t.Fatalf("updated course=%+v, want %+v", repo.list[0], want)
	}

	if err := s.Update(ctx, uuid.Must(uuid.NewV4()), upd); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := s.Update(ctx, id, CourseInput{Title: ptr("x")}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestCourses_ListPublished(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewCourseService(&fakeCourses{}, newFakePrincipals(), nil)

	for _, in := range []CourseInput{input("a", true), input("b", false), input("c", true)} {
		if _, err := s.Create(ctx, in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	all, err := s.ListAll(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListAll: len=%d err=%v", len(all), err)
	}
	pub, err := s.ListPublished(ctx)
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	if len(pub) != 2 || pub[0].Title != "a" || pub[1].Title != "c" {
		t.Fatalf("published=%+v", pub)
	}
	for _, c := range pub {
		if !c.Published {
			t.Fatalf("unpublished course listed: %+v", c)
		}
	}
}

func TestCourses_Purchase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := newFakePrincipals()
	_ = p.CreateUser(ctx, &model.User{Principal: model.Principal{Username: "bob"}})
	s := NewCourseService(&fakeCourses{}, p, nil)

	pubID, _ := s.Create(ctx, input("pub", true))
	hiddenID, _ := s.Create(ctx, input("hidden", false))

	if err := s.Purchase(ctx, uuid.Must(uuid.NewV4()), "bob"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound on unknown course, got %v", err)
	}
	if err := s.Purchase(ctx, hiddenID, "bob"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound on unpublished course, got %v", err)
	}
	if err := s.Purchase(ctx, pubID, "bob"); err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if err := s.Purchase(ctx, pubID, "bob"); !errors.Is(err, errs.ErrAlreadyPurchased) {
		t.Fatalf("want ErrAlreadyPurchased, got %v", err)
	}
	if n := len(p.users["bob"].Courses); n != 1 {
		t.Fatalf("purchased set size=%d, want 1", n)
	}
	if err := s.Purchase(ctx, pubID, "ghost"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown user, got %v", err)
	}
}

func TestCourses_ListPurchased(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := newFakePrincipals()
	_ = p.CreateUser(ctx, &model.User{Principal: model.Principal{Username: "bob"}})
	repo := &fakeCourses{}
	s := NewCourseService(repo, p, nil)

	a, _ := s.Create(ctx, input("a", true))
	b, _ := s.Create(ctx, input("b", true))
	_, _ = s.Create(ctx, input("c", true))

	if err := s.Purchase(ctx, b, "bob"); err != nil {
		t.Fatalf("Purchase b: %v", err)
	}
	if err := s.Purchase(ctx, a, "bob"); err != nil {
		t.Fatalf("Purchase a: %v", err)
	}
	// later unpublishing keeps the purchase visible to its owner
	if err := s.Update(ctx, a, input("a", false)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	// dangling id is skipped
	p.users["bob"].Courses = append(p.users["bob"].Courses, uuid.Must(uuid.NewV4()))

	got, err := s.ListPurchased(ctx, "bob")
	if err != nil {
		t.Fatalf("ListPurchased: %v", err)
	}
	if len(got) != 2 || got[0].ID != b || got[1].ID != a {
		t.Fatalf("purchased=%+v", got)
	}

	if _, err := s.ListPurchased(ctx, "ghost"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown user, got %v", err)
	}

	repo.listErr = errs.ErrStoreUnreadable
	if _, err := s.ListPurchased(ctx, "bob"); !errors.Is(err, errs.ErrStoreUnreadable) {
		t.Fatalf("want ErrStoreUnreadable, got %v", err)
	}
}
