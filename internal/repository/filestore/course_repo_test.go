package filestore

import (
	"context"
	"os"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and161185/coursemart/internal/errs"
	"github.com/and161185/coursemart/internal/model"
)

func course(title string, published bool) *model.Course {
	return &model.Course{
		ID:          uuid.Must(uuid.NewV4()),
		Title:       title,
		Description: "d",
		Price:       10,
		Published:   published,
		ImageLink:   "https://img.example/x.png",
	}
}

func TestCourseRepo_CreateListGet(t *testing.T) {
	r := NewCourseRepo(newStore(t))
	ctx := context.Background()

	a := course("Go Basics", true)
	b := course("Go Advanced", false)
	require.NoError(t, r.Create(ctx, a))
	require.NoError(t, r.Create(ctx, b))
	require.ErrorIs(t, r.Create(ctx, course("Go Basics", false)), errs.ErrDuplicateTitle)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Course{*a, *b}, all)

	got, err := r.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, *b, *got)

	_, err = r.Get(ctx, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCourseRepo_CreateIDCollisionIsNotAConflict(t *testing.T) {
	r := NewCourseRepo(newStore(t))
	ctx := context.Background()
	a := course("A", true)
	require.NoError(t, r.Create(ctx, a))

	dup := course("B", true)
	dup.ID = a.ID
	err := r.Create(ctx, dup)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errs.ErrAlreadyExists)
	assert.NotErrorIs(t, err, errs.ErrDuplicateTitle)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCourseRepo_UpdateKeepsIDAndSkipsTitleCheck(t *testing.T) {
	r := NewCourseRepo(newStore(t))
	ctx := context.Background()
	a := course("A", true)
	b := course("B", true)
	require.NoError(t, r.Create(ctx, a))
	require.NoError(t, r.Create(ctx, b))

	upd := &model.Course{ID: b.ID, Title: "A", Description: "new", Price: 99.5, Published: false, ImageLink: "l"}
	require.NoError(t, r.Update(ctx, upd))

	got, err := r.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, *upd, *got)

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)

	missing := course("C", true)
	require.ErrorIs(t, r.Update(ctx, missing), errs.ErrNotFound)
}

func TestCourseRepo_UnreadableStore(t *testing.T) {
	st := newStore(t)
	r := NewCourseRepo(st)
	require.NoError(t, os.Remove(st.Courses.Path()))

	_, err := r.List(context.Background())
	require.ErrorIs(t, err, errs.ErrStoreUnreadable)
	require.ErrorIs(t, r.Create(context.Background(), course("x", true)), errs.ErrStoreUnreadable)
}
