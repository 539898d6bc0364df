// Package runlock keeps two processes from reorganizing the same folder at
// the same time.
package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked means another run holds the lock for the same root
var ErrLocked = errors.New("another run is already organizing this folder")

// Lock is an advisory lock on one root folder
type Lock struct {
	root string
	fl   *flock.Flock
}

// PathFor returns the lock file used for root. When dir is inside root the
// caller must keep the file out of its scan; see Lock.Path.
func PathFor(dir, root string) string {
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(dir, "declutter-"+hex.EncodeToString(sum[:8])+".lock")
}

// Acquire takes the lock for root without blocking. Lock files are kept in
// dir, or in the OS temp dir when dir is empty.
func Acquire(dir, root string) (*Lock, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(PathFor(dir, root))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", root, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, root)
	}
	return &Lock{root: root, fl: fl}, nil
}

// Path returns the lock file
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Release drops the lock. The lock file itself is left behind for reuse.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
