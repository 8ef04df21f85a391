package limiter

import (
	"bytes"
	"context"
	"strconv"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemory(c *clock) *Memory {
	l := NewMemory(15*time.Minute, 3, 10*time.Minute)
	l.now = c.now
	return l
}

func TestHashIP_Stable(t *testing.T) {
	t.Parallel()
	if !bytes.Equal(HashIP("1.2.3.4"), HashIP("1.2.3.4")) {
		t.Fatalf("hash not stable")
	}
	if bytes.Equal(HashIP("1.2.3.4"), HashIP("1.2.3.5")) {
		t.Fatalf("distinct ips hash equal")
	}
}

func TestMemory_BlocksAfterMaxFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	l := newTestMemory(c)
	ip := HashIP("10.0.0.1")

	for i := 0; i < 2; i++ {
		blocked, _, err := l.Failure(ctx, "bob", ip)
		if err != nil || blocked {
			t.Fatalf("failure %d: blocked=%v err=%v", i, blocked, err)
		}
	}
	blocked, retry, err := l.Failure(ctx, "bob", ip)
	if err != nil || !blocked || retry != 10*time.Minute {
		t.Fatalf("third failure: blocked=%v retry=%v err=%v", blocked, retry, err)
	}

	ok, retry, _ := l.Allow(ctx, "bob", ip)
	if ok || retry <= 0 {
		t.Fatalf("want blocked, got ok=%v retry=%v", ok, retry)
	}
	if ok, _, _ := l.Allow(ctx, "bob", HashIP("10.0.0.2")); !ok {
		t.Fatalf("other ip must not be blocked")
	}
	if ok, _, _ := l.Allow(ctx, "alice", ip); !ok {
		t.Fatalf("other user must not be blocked")
	}

	c.advance(11 * time.Minute)
	if ok, _, _ := l.Allow(ctx, "bob", ip); !ok {
		t.Fatalf("block must expire")
	}
}

func TestMemory_WindowResetsCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	l := newTestMemory(c)
	ip := HashIP("10.0.0.1")

	_, _, _ = l.Failure(ctx, "bob", ip)
	_, _, _ = l.Failure(ctx, "bob", ip)
	c.advance(16 * time.Minute)
	if blocked, _, _ := l.Failure(ctx, "bob", ip); blocked {
		t.Fatalf("stale failures must not count")
	}
}

func TestMemory_SuccessResets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	l := newTestMemory(c)
	ip := HashIP("10.0.0.1")

	_, _, _ = l.Failure(ctx, "bob", ip)
	_, _, _ = l.Failure(ctx, "bob", ip)
	if err := l.Success(ctx, "bob", ip); err != nil {
		t.Fatalf("Success: %v", err)
	}
	if blocked, _, _ := l.Failure(ctx, "bob", ip); blocked {
		t.Fatalf("counter must restart after success")
	}
}

func TestMemory_EvictsStaleEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	l := newTestMemory(c)
	ip := HashIP("10.0.0.1")

	for i := 0; i < 10_000; i++ {
		_, _, _ = l.Failure(ctx, "user"+strconv.Itoa(i), ip)
	}
	if n := l.Len(); n != 10_000 {
		t.Fatalf("entries=%d, want 10000", n)
	}

	c.advance(48 * time.Hour)
	_, _, _ = l.Failure(ctx, "late", ip)
	if n := l.Len(); n != 1 {
		t.Fatalf("entries after 48h=%d, want 1", n)
	}
}

func TestMemory_SweepKeepsActiveBlocks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	l := NewMemory(time.Minute, 2, time.Hour)
	l.now = c.now
	ip := HashIP("10.0.0.1")

	_, _, _ = l.Failure(ctx, "bob", ip)
	if blocked, _, _ := l.Failure(ctx, "bob", ip); !blocked {
		t.Fatalf("bob must be blocked")
	}
	_, _, _ = l.Failure(ctx, "carol", ip)

	// past carol's window, inside bob's block
	c.advance(5 * time.Minute)
	_, _, _ = l.Failure(ctx, "dave", ip)

	if ok, _, _ := l.Allow(ctx, "bob", ip); ok {
		t.Fatalf("active block must survive a sweep")
	}
	if n := l.Len(); n != 2 {
		t.Fatalf("entries=%d, want bob and dave", n)
	}
}
