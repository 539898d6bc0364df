// Package archive unpacks zip, gzip and tar files.
//
// Extraction always goes through a scratch directory next to the final
// destination. The scratch directory is renamed into place only when every
// entry was written, so a failed extraction never leaves partial output.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// Format names a supported archive format by its extension token
type Format string

const (
	FormatZip  Format = "ZIP"
	FormatGzip Format = "GZ"
	FormatTar  Format = "TAR"
)

var (
	// ErrNotArchive means the content does not match the format its
	// extension claims.
	ErrNotArchive = errors.New("not an archive")

	// ErrUnsafeEntry means an entry would be written outside the destination.
	ErrUnsafeEntry = errors.New("unsafe archive entry")

	// ErrUnsupportedFormat means no extractor exists for the format.
	ErrUnsupportedFormat = errors.New("unsupported archive format")

	// ErrDestinationExists means the final destination is already present.
	ErrDestinationExists = errors.New("destination already exists")
)

// Extractor unpacks archives into directories
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor. A nil logger discards output.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{logger: logger}
}

// Supports reports whether format can be extracted
func Supports(format Format) bool {
	switch format {
	case FormatZip, FormatGzip, FormatTar:
		return true
	}
	return false
}

// Extract unpacks the archive at path into dest, which must not exist yet.
// On any error dest is left absent and no scratch files remain.
func (e *Extractor) Extract(path string, format Format, dest string) error {
	if !Supports(format) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if _, err := os.Lstat(dest); err == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dest)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat destination: %w", err)
	}

	scratch := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".partial-"+uuid.NewString())
	if err := os.Mkdir(scratch, 0755); err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}

	if err := e.extractInto(path, format, scratch); err != nil {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			e.logger.Warn("failed to remove scratch directory", "path", scratch, "error", rmErr)
		}
		return err
	}

	if err := os.Rename(scratch, dest); err != nil {
		os.RemoveAll(scratch)
		return fmt.Errorf("failed to move extracted files into place: %w", err)
	}

	e.logger.Debug("archive extracted", "archive", path, "dest", dest)
	return nil
}

func (e *Extractor) extractInto(path string, format Format, dir string) error {
	switch format {
	case FormatZip:
		return e.extractZip(path, dir)
	case FormatTar:
		f, err := openNonEmpty(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return e.extractTar(f, dir)
	case FormatGzip:
		return e.extractGzip(path, dir)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// openNonEmpty opens path; a zero-length file is not an archive of any kind.
func openNonEmpty(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("%w: empty file", ErrNotArchive)
	}
	return f, nil
}

func (e *Extractor) extractZip(path, dir string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return fmt.Errorf("%w: %v", ErrNotArchive, err)
		}
		return fmt.Errorf("failed to open zip: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		target, err := safeJoin(dir, zf.Name)
		if err != nil {
			return err
		}

		mode := zf.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case mode.IsRegular():
			rc, err := zf.Open()
			if err != nil {
				return fmt.Errorf("failed to open zip entry %s: %w", zf.Name, err)
			}
			err = writeFile(target, rc, mode.Perm())
			rc.Close()
			if err != nil {
				return fmt.Errorf("failed to extract %s: %w", zf.Name, err)
			}
		default:
			e.logger.Debug("skipping non-regular zip entry", "entry", zf.Name, "mode", mode.String())
		}
	}
	return nil
}

func (e *Extractor) extractTar(r io.Reader, dir string) error {
	tr := tar.NewReader(r)
	first := true

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if first && (errors.Is(err, tar.ErrHeader) || errors.Is(err, io.ErrUnexpectedEOF)) {
				return fmt.Errorf("%w: %v", ErrNotArchive, err)
			}
			return fmt.Errorf("failed to read tar: %w", err)
		}
		first = false

		target, err := safeJoin(dir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, fs.FileMode(hdr.Mode).Perm()); err != nil {
				return fmt.Errorf("failed to extract %s: %w", hdr.Name, err)
			}
		default:
			// Links are not followed or recreated.
			e.logger.Debug("skipping tar entry", "entry", hdr.Name, "type", string(hdr.Typeflag))
		}
	}
}

func (e *Extractor) extractGzip(path, dir string) error {
	f, err := openNonEmpty(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		if errors.Is(err, gzip.ErrHeader) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %v", ErrNotArchive, err)
		}
		return fmt.Errorf("failed to open gzip: %w", err)
	}
	defer gz.Close()

	name := filepath.Base(path)
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".tar.gz") {
		return e.extractTar(gz, dir)
	}

	out := name
	if strings.HasSuffix(lower, ".gz") {
		out = name[:len(name)-len(".gz")]
	}
	if out == "" {
		out = "unnamed"
	}
	target, err := safeJoin(dir, out)
	if err != nil {
		return err
	}
	if err := writeFile(target, gz, 0644); err != nil {
		if errors.Is(err, gzip.ErrHeader) {
			return fmt.Errorf("%w: %v", ErrNotArchive, err)
		}
		return fmt.Errorf("failed to decompress %s: %w", name, err)
	}
	return nil
}

func writeFile(target string, r io.Reader, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm|0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
