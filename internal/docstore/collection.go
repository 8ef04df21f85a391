// Package docstore implements the credential store: named collections of
// records persisted as whole JSON documents, read and rewritten per operation.
//
// Reads never lock: every save replaces the document by atomic rename.
// Writes run as load → mutate → save under a per-collection lock that is held
// both in-process (sync.Mutex) and across processes (flock on "<path>.lock").
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/and161185/coursemart/internal/errs"
)

const (
	// DefaultLockTimeout bounds the wait for a collection's write lock.
	DefaultLockTimeout = 5 * time.Second

	lockRetryDelay = 10 * time.Millisecond
)

type options struct {
	log         *zap.Logger
	lockTimeout time.Duration
}

// Option configures a Collection.
type Option func(*options)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithLockTimeout sets how long a writer waits for the collection lock.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.lockTimeout = d
		}
	}
}

// Collection is one named document of records of type T.
type Collection[T any] struct {
	name        string
	path        string
	key         KeyFunc[T]
	mu          sync.Mutex
	flock       *flock.Flock
	lockTimeout time.Duration
	log         *zap.Logger
}

// Open prepares the collection stored at path, creating its directory and an
// empty document when none exists yet.
func Open[T any](ctx context.Context, name, path string, key KeyFunc[T], opts ...Option) (*Collection[T], error) {
	o := options{log: zap.NewNop(), lockTimeout: DefaultLockTimeout}
	for _, fn := range opts {
		fn(&o)
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("docstore: create dir for %s: %w", name, err)
	}

	c := &Collection[T]{
		name:        name,
		path:        path,
		key:         key,
		flock:       flock.New(path + ".lock"),
		lockTimeout: o.lockTimeout,
		log:         o.log.With(zap.String("collection", name)),
	}

	unlock, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	_, err = os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := writeAtomic(path, []byte("[]\n")); err != nil {
			return nil, fmt.Errorf("docstore: init %s: %w", name, err)
		}
		c.log.Info("created empty collection", zap.String("path", path))
	case err != nil:
		return nil, fmt.Errorf("docstore: stat %s: %w", name, err)
	default:
		c.log.Info("opened collection", zap.String("path", path))
	}
	return c, nil
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Path returns the backing document path.
func (c *Collection[T]) Path() string { return c.path }

// Load reads the whole collection. A missing or malformed document yields
// errs.ErrStoreUnreadable.
func (c *Collection[T]) Load(ctx context.Context) (*Snapshot[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.read()
}

// Save overwrites the whole collection with s.
func (c *Collection[T]) Save(ctx context.Context, s *Snapshot[T]) error {
	unlock, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return c.write(s)
}

// Update runs one read-modify-write cycle under the collection's write lock.
// Nothing is written when fn fails or leaves the snapshot unchanged.
func (c *Collection[T]) Update(ctx context.Context, fn func(*Snapshot[T]) error) error {
	unlock, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	s, err := c.read()
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	if !s.Dirty() {
		return nil
	}
	return c.write(s)
}

func (c *Collection[T]) acquire(ctx context.Context) (func(), error) {
	c.mu.Lock()

	lctx, cancel := context.WithTimeout(ctx, c.lockTimeout)
	defer cancel()
	ok, err := c.flock.TryLockContext(lctx, lockRetryDelay)
	if err == nil && !ok {
		err = lctx.Err()
	}
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("docstore: lock %s: %w", c.name, err)
	}

	return func() {
		if err := c.flock.Unlock(); err != nil {
			c.log.Warn("unlock failed", zap.Error(err))
		}
		c.mu.Unlock()
	}, nil
}

func (c *Collection[T]) read() (*Snapshot[T], error) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		c.log.Error("read failed", zap.String("path", c.path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrStoreUnreadable, c.name, err)
	}
	var recs []T
	if err := json.Unmarshal(b, &recs); err != nil {
		c.log.Error("malformed document", zap.String("path", c.path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrStoreUnreadable, c.name, err)
	}
	if recs == nil {
		c.log.Error("malformed document", zap.String("path", c.path), zap.String("reason", "null"))
		return nil, fmt.Errorf("%w: %s: null document", errs.ErrStoreUnreadable, c.name)
	}
	s, err := NewSnapshot(c.key, recs...)
	if err != nil {
		c.log.Error("malformed document", zap.String("path", c.path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrStoreUnreadable, c.name, err)
	}
	return s, nil
}

func (c *Collection[T]) write(s *Snapshot[T]) error {
	recs := s.records
	if recs == nil {
		recs = []T{}
	}
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("docstore: marshal %s: %w", c.name, err)
	}
	if err := writeAtomic(c.path, append(b, '\n')); err != nil {
		c.log.Error("save failed", zap.String("path", c.path), zap.Error(err))
		return fmt.Errorf("docstore: save %s: %w", c.name, err)
	}
	s.dirty = false
	return nil
}
