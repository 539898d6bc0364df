// Package organizer runs one declutter pass: scan, relocate, prune.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/fenilsonani/declutter/internal/archive"
	"github.com/fenilsonani/declutter/internal/classify"
	"github.com/fenilsonani/declutter/internal/config"
	"github.com/fenilsonani/declutter/internal/pruner"
	"github.com/fenilsonani/declutter/internal/relocator"
	"github.com/fenilsonani/declutter/internal/runlock"
	"github.com/fenilsonani/declutter/internal/scanner"
)

var (
	// ErrInvalidRoot means the target is missing or not a directory
	ErrInvalidRoot = errors.New("not a valid directory")
	// ErrAlreadyRun is returned by a second call to Run
	ErrAlreadyRun = errors.New("organizer has already run")
)

// State is the lifecycle position of an Organizer
type State int

const (
	StateIdle State = iota
	StateScanning
	StateRelocating
	StatePruning
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateRelocating:
		return "relocating"
	case StatePruning:
		return "pruning"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ConfirmFunc is shown the scan result before anything moves. Returning
// false ends the run without changes.
type ConfirmFunc func(result *scanner.ScanResult) (bool, error)

// Options holds the collaborators of an Organizer. Zero values get
// working defaults.
type Options struct {
	Logger    *slog.Logger
	Confirm   ConfirmFunc
	Extractor relocator.Extractor
	// LockDir holds the run lock file; empty means the OS temp dir
	LockDir string
	// SkipPaths are files or folders the scan must never touch, such as
	// the config file and the history journal. The lock file is always
	// skipped.
	SkipPaths []string
}

// Organizer owns the state of a single run over one root folder
type Organizer struct {
	root   string
	cfg    *config.Config
	table  *classify.Table
	opts   Options
	logger *slog.Logger

	state  State
	result *scanner.ScanResult
}

// New resolves root and prepares a run. The root must be an existing
// directory; symlinks are resolved so the lock and the reserved-name checks
// apply to the real folder.
func New(root string, cfg *config.Config, opts Options) (*Organizer, error) {
	resolved, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.GetDefault()
	}
	table, err := cfg.Table()
	if err != nil {
		return nil, fmt.Errorf("invalid category table: %w", err)
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Extractor == nil {
		opts.Extractor = archive.NewExtractor(opts.Logger.With("component", "archive"))
	}

	return &Organizer{
		root:   resolved,
		cfg:    cfg,
		table:  table,
		opts:   opts,
		logger: opts.Logger,
		state:  StateIdle,
	}, nil
}

func resolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}
	return resolved, nil
}

// Root returns the resolved root folder
func (o *Organizer) Root() string {
	return o.root
}

// State returns the current lifecycle state
func (o *Organizer) State() State {
	return o.state
}

// ScanResult returns the result of the scan step, or nil before it ran
func (o *Organizer) ScanResult() *scanner.ScanResult {
	return o.result
}

// Run performs the pass. It may be called once. Cancellation is honoured
// between steps; a step in progress always finishes.
func (o *Organizer) Run(ctx context.Context) (*Summary, error) {
	if o.state != StateIdle {
		return nil, ErrAlreadyRun
	}

	summary := newSummary(uuid.NewString(), o.root, o.cfg.DryRun)
	logger := o.logger.With("run", summary.RunID)
	logger.Info("start in folder", "root", o.root, "dry_run", o.cfg.DryRun)

	lock, err := runlock.Acquire(o.opts.LockDir, o.root)
	if err != nil {
		return o.fail(summary, err)
	}
	defer lock.Release()

	o.state = StateScanning
	sc := scanner.New(o.table, o.table.ReservedFolders(), logger.With("component", "scanner")).
		Skip(o.skipPaths(lock.Path())...)
	result, err := sc.Scan(o.root)
	if err != nil {
		return o.fail(summary, fmt.Errorf("scan failed: %w", err))
	}
	o.result = result
	summary.Extensions = result.SortedExtensions()
	summary.Unknown = result.SortedUnknown()
	logger.Info("scan complete",
		"files", result.TotalFiles(),
		"folders", len(result.Folders),
		"unknown_extensions", len(summary.Unknown))

	if err := ctx.Err(); err != nil {
		return o.fail(summary, err)
	}

	if o.opts.Confirm != nil {
		ok, err := o.opts.Confirm(result)
		if err != nil {
			return o.fail(summary, fmt.Errorf("confirmation failed: %w", err))
		}
		if !ok {
			logger.Info("run declined, nothing moved")
			summary.Declined = true
			return o.finish(summary), nil
		}
	}

	o.state = StateRelocating
	o.relocate(result, summary, logger)

	if err := ctx.Err(); err != nil {
		return o.fail(summary, err)
	}

	o.state = StatePruning
	pr := pruner.New(o.cfg.DryRun, logger.With("component", "pruner"))
	pruned := pr.Prune(result.Folders)
	summary.FoldersRemoved = len(pruned.Removed)
	summary.FoldersKept = len(pruned.Kept)
	for _, pe := range pruned.Kept {
		summary.addIssue(IssueFolderKept, pe.Path, pe)
	}

	logger.Info("run complete",
		"moved", summary.TotalMoved(),
		"archives", summary.ArchivesExtracted,
		"folders_removed", summary.FoldersRemoved,
		"issues", len(summary.Issues))
	return o.finish(summary), nil
}

// skipPaths resolves the excluded paths the same way the root was resolved
// so they compare equal to scanned paths.
func (o *Organizer) skipPaths(lockPath string) []string {
	paths := make([]string, 0, len(o.opts.SkipPaths)+1)
	for _, p := range append([]string{lockPath}, o.opts.SkipPaths...) {
		if p == "" {
			continue
		}
		paths = append(paths, resolvePath(p))
	}
	return paths
}

// resolvePath makes p absolute and resolves symlinks in it, falling back to
// resolving only the parent when p does not exist yet.
func resolvePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}

func (o *Organizer) relocate(result *scanner.ScanResult, summary *Summary, logger *slog.Logger) {
	rel := relocator.New(relocator.Options{
		DryRun:      o.cfg.DryRun,
		MaxAttempts: o.cfg.Collision.MaxAttempts,
	}, o.opts.Extractor, logger.With("component", "relocator"))

	for _, cat := range o.table.Categories() {
		files := result.Files[cat.Name]
		if len(files) == 0 {
			continue
		}
		logger.Debug("relocating category", "category", cat.Name, "files", len(files))

		for _, entry := range files {
			target := filepath.Join(o.root, cat.Folder)
			if sub := cat.SubfolderFor(entry.Ext); sub != "" {
				target = filepath.Join(target, sub)
			}

			if cat.Kind == classify.KindArchive {
				o.relocateArchive(rel, entry, target, summary, logger)
				continue
			}
			o.relocateMedia(rel, entry, target, cat.Name, summary, logger)
		}
	}

	if len(result.Other) == 0 {
		return
	}
	if !o.cfg.OtherFiles.Relocate {
		summary.OtherLeft = len(result.Other)
		logger.Info("leaving other files in place", "files", len(result.Other))
		return
	}
	target := filepath.Join(o.root, classify.OtherFolder)
	for _, entry := range result.Other {
		o.relocateMedia(rel, entry, target, classify.OtherFolder, summary, logger)
	}
}

func (o *Organizer) relocateMedia(rel *relocator.Relocator, entry scanner.FileEntry, target, bucket string, summary *Summary, logger *slog.Logger) {
	if _, err := rel.RelocateMedia(entry, target); err != nil {
		o.recordMoveError(entry.Path, err, summary, logger)
		return
	}
	summary.Moved[bucket]++
	summary.BytesMoved += entry.Size
}

func (o *Organizer) relocateArchive(rel *relocator.Relocator, entry scanner.FileEntry, target string, summary *Summary, logger *slog.Logger) {
	dest, err := rel.RelocateArchive(entry, target)

	var ae *relocator.ArchiveError
	switch {
	case errors.As(err, &ae):
		summary.ArchivesRejected++
		if ae.NotAnArchive() {
			logger.Warn("not an archive, left in place", "path", entry.Path)
			summary.addIssue(IssueNotAnArchive, entry.Path, ae.Err)
		} else {
			logger.Warn("extraction failed, left in place", "path", entry.Path, "error", ae.Err)
			summary.addIssue(IssueExtractFailed, entry.Path, ae.Err)
		}
		return
	case err != nil && dest == "":
		o.recordMoveError(entry.Path, err, summary, logger)
		return
	case err != nil:
		// extracted, but the archive could not be deleted afterwards
		o.recordMoveError(entry.Path, err, summary, logger)
	}

	summary.ArchivesExtracted++
	summary.BytesMoved += entry.Size
}

func (o *Organizer) recordMoveError(path string, err error, summary *Summary, logger *slog.Logger) {
	var me *relocator.MoveError
	if errors.As(err, &me) {
		summary.MoveErrors = append(summary.MoveErrors, me)
		logger.Warn("move failed", "path", path, "reason", me.Reason.String())
	} else {
		logger.Warn("move failed", "path", path, "error", err)
	}
	summary.addIssue(IssueMoveFailed, path, err)
}

func (o *Organizer) fail(summary *Summary, err error) (*Summary, error) {
	o.state = StateFailed
	summary.Error = err.Error()
	summary.FinishedAt = time.Now()
	return summary, err
}

func (o *Organizer) finish(summary *Summary) *Summary {
	o.state = StateDone
	summary.FinishedAt = time.Now()
	return summary
}
