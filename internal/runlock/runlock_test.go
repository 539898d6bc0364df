package runlock

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestAcquireExcludesSecondHolder(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir, "/data/inbox")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	_, err = Acquire(dir, "/data/inbox")
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("second Acquire() error = %v, want ErrLocked", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	again, err := Acquire(dir, "/data/inbox")
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	again.Release()
}

func TestAcquireDifferentRoots(t *testing.T) {
	dir := t.TempDir()

	a, err := Acquire(dir, "/data/a")
	if err != nil {
		t.Fatalf("Acquire(a) error = %v", err)
	}
	defer a.Release()

	b, err := Acquire(dir, "/data/b")
	if err != nil {
		t.Fatalf("Acquire(b) error = %v", err)
	}
	defer b.Release()
}

func TestPathFor(t *testing.T) {
	p1 := PathFor("/tmp", "/data/a")
	p2 := PathFor("/tmp", "/data/b")

	if p1 == p2 {
		t.Error("different roots must get different lock files")
	}
	if filepath.Dir(p1) != "/tmp" {
		t.Errorf("lock file %s not in /tmp", p1)
	}
	if p1 != PathFor("/tmp", "/data/a") {
		t.Error("PathFor must be deterministic")
	}
}

func TestLockPath(t *testing.T) {
	dir := t.TempDir()
	l, err := Acquire(dir, "/data/a")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer l.Release()

	if l.Path() != PathFor(dir, "/data/a") {
		t.Errorf("Path() = %s, want %s", l.Path(), PathFor(dir, "/data/a"))
	}
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("Release() on nil = %v", err)
	}
}
