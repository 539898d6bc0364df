package relocator

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fenilsonani/declutter/internal/archive"
	"github.com/fenilsonani/declutter/internal/scanner"
	"github.com/fenilsonani/declutter/internal/translit"
)

// DefaultMaxAttempts bounds the numeric suffixes tried on a name collision
const DefaultMaxAttempts = 1000

var errNoFreeName = errors.New("no free destination name")

// Extractor unpacks an archive into dest, which must not exist. On failure
// dest must be left absent.
type Extractor interface {
	Extract(path string, format archive.Format, dest string) error
}

// Options configures a Relocator
type Options struct {
	DryRun      bool
	MaxAttempts int
}

// ArchiveError reports an archive that was left in place because it could
// not be extracted.
type ArchiveError struct {
	Path string
	Dest string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("%s: cannot extract into %s: %v", e.Path, e.Dest, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// NotAnArchive reports whether the content did not match the extension
func (e *ArchiveError) NotAnArchive() bool {
	return errors.Is(e.Err, archive.ErrNotArchive)
}

// Relocator moves files into category folders. It never overwrites: a name
// that is taken gets a numeric suffix.
type Relocator struct {
	opts      Options
	extractor Extractor
	logger    *slog.Logger

	// names handed out during this run; in dry-run mode nothing reaches the
	// filesystem, so collisions between planned moves are caught here
	planned map[string]bool
}

// New creates a Relocator
func New(opts Options, extractor Extractor, logger *slog.Logger) *Relocator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Relocator{
		opts:      opts,
		extractor: extractor,
		logger:    logger,
		planned:   make(map[string]bool),
	}
}

// RelocateMedia moves the file into targetFolder under its transliterated
// name and returns the destination path.
func (r *Relocator) RelocateMedia(entry scanner.FileEntry, targetFolder string) (string, error) {
	if !r.opts.DryRun {
		if err := os.MkdirAll(targetFolder, 0755); err != nil {
			return "", CategorizeError(entry.Path, targetFolder, err)
		}
	}

	stem, ext := translit.SplitExt(translit.Filename(entry.Name))
	if ext != "" {
		ext = "." + ext
	}
	dest, err := r.freeName(targetFolder, stem, ext)
	if err != nil {
		return "", CategorizeError(entry.Path, targetFolder, err)
	}

	if r.opts.DryRun {
		r.logger.Info("would move", "from", entry.Path, "to", dest)
		return dest, nil
	}

	if err := os.Rename(entry.Path, dest); err != nil {
		delete(r.planned, dest)
		return "", CategorizeError(entry.Path, dest, err)
	}

	r.logger.Debug("moved", "from", entry.Path, "to", dest)
	return dest, nil
}

// RelocateArchive extracts the archive into its own folder beneath
// targetFolder and deletes it. When extraction fails the archive stays
// where it is and an *ArchiveError is returned.
func (r *Relocator) RelocateArchive(entry scanner.FileEntry, targetFolder string) (string, error) {
	if !r.opts.DryRun {
		if err := os.MkdirAll(targetFolder, 0755); err != nil {
			return "", CategorizeError(entry.Path, targetFolder, err)
		}
	}

	stem, _ := translit.SplitExt(entry.Name)
	folder := translit.Normalize(stem)
	if folder == "" {
		folder = "unnamed"
	}
	dest, err := r.freeName(targetFolder, folder, "")
	if err != nil {
		return "", CategorizeError(entry.Path, targetFolder, err)
	}

	if r.opts.DryRun {
		r.logger.Info("would extract", "archive", entry.Path, "to", dest)
		return dest, nil
	}

	if err := r.extractor.Extract(entry.Path, archive.Format(entry.Ext), dest); err != nil {
		delete(r.planned, dest)
		return "", &ArchiveError{Path: entry.Path, Dest: dest, Err: err}
	}

	if err := os.Remove(entry.Path); err != nil {
		// Contents are in place; the archive itself lingers.
		return dest, CategorizeError(entry.Path, "", err)
	}

	r.logger.Debug("extracted", "archive", entry.Path, "to", dest)
	return dest, nil
}

// freeName returns dir/stem+ext, or the first dir/stem_N+ext that is neither
// on disk nor already handed out.
func (r *Relocator) freeName(dir, stem, ext string) (string, error) {
	candidate := filepath.Join(dir, stem+ext)
	for i := 1; ; i++ {
		taken, err := r.taken(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			r.planned[candidate] = true
			return candidate, nil
		}
		if i > r.opts.MaxAttempts {
			return "", fmt.Errorf("%w for %s in %s", errNoFreeName, stem+ext, dir)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
}

func (r *Relocator) taken(path string) (bool, error) {
	if r.planned[path] {
		return true, nil
	}
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
