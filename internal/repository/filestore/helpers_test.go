package filestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/coursemart/internal/docstore"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(context.Background(), Paths{
		Users:   filepath.Join(dir, "user.json"),
		Admins:  filepath.Join(dir, "admin.json"),
		Courses: filepath.Join(dir, "course.json"),
	}, docstore.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return st
}
