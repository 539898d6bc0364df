// Package pruner removes folders that a relocation pass left empty.
package pruner

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"syscall"
)

// PruneError reports a folder that was left in place
type PruneError struct {
	Path     string
	NotEmpty bool
	Original error
}

func (e *PruneError) Error() string {
	if e.NotEmpty {
		return fmt.Sprintf("%s: folder not empty", e.Path)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Original)
}

func (e *PruneError) Unwrap() error {
	return e.Original
}

// Result represents the outcome of a prune pass
type Result struct {
	Removed []string
	Kept    []*PruneError
}

// Pruner removes empty folders
type Pruner struct {
	dryRun bool
	logger *slog.Logger
}

// New creates a Pruner. In dry-run mode folders are only reported.
func New(dryRun bool, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pruner{dryRun: dryRun, logger: logger}
}

// Prune tries to remove every folder, walking the slice back to front.
// Folders must be in discovery order (parents before children) so that a
// child is removed before its parent is attempted.
func (p *Pruner) Prune(folders []string) *Result {
	result := &Result{
		Removed: []string{},
		Kept:    []*PruneError{},
	}

	for i := len(folders) - 1; i >= 0; i-- {
		folder := folders[i]

		if p.dryRun {
			p.logger.Info("would remove folder if empty", "path", folder)
			continue
		}

		// os.Remove refuses non-empty directories, which is the whole point.
		if err := os.Remove(folder); err != nil {
			pe := &PruneError{Path: folder, Original: err, NotEmpty: isNotEmpty(err)}
			result.Kept = append(result.Kept, pe)
			p.logger.Info("folder left in place", "path", folder, "reason", pe.Error())
			continue
		}

		result.Removed = append(result.Removed, folder)
		p.logger.Debug("removed empty folder", "path", folder)
	}

	return result
}

func isNotEmpty(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ENOTEMPTY || errno == syscall.EEXIST
	}
	return errors.Is(err, fs.ErrExist)
}
