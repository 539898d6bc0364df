package scanner

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/declutter/internal/classify"
)

// Scanner walks a directory tree and buckets files by category
type Scanner struct {
	table    *classify.Table
	reserved map[string]bool
	skip     []string
	logger   *slog.Logger
}

// New creates a Scanner. Directories named like any entry of reserved are
// never descended into, at any depth.
func New(table *classify.Table, reserved []string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := make(map[string]bool, len(reserved))
	for _, name := range reserved {
		r[name] = true
	}
	return &Scanner{
		table:    table,
		reserved: r,
		logger:   logger,
	}
}

// Skip excludes the given absolute paths, and anything below them, from
// every later scan. Empty paths are ignored.
func (s *Scanner) Skip(paths ...string) *Scanner {
	for _, p := range paths {
		if p == "" {
			continue
		}
		s.skip = append(s.skip, filepath.Clean(p))
	}
	return s
}

func (s *Scanner) skipped(path string) bool {
	for _, p := range s.skip {
		if path == p || strings.HasPrefix(path, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Scan walks root depth-first and returns a new ScanResult. The first
// directory that cannot be listed aborts the walk with *UnreadableError.
func (s *Scanner) Scan(root string) (*ScanResult, error) {
	result := NewScanResult(root)
	if err := s.scanDir(root, result); err != nil {
		return nil, err
	}

	s.logger.Debug("scan complete",
		"root", root,
		"files", result.TotalFiles(),
		"other", len(result.Other),
		"folders", len(result.Folders),
	)
	return result, nil
}

func (s *Scanner) scanDir(dir string, result *ScanResult) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &UnreadableError{Path: dir, Err: err}
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if s.skipped(path) {
			s.logger.Debug("skipping excluded path", "path", path)
			continue
		}

		if entry.IsDir() {
			if s.reserved[entry.Name()] {
				s.logger.Debug("skipping reserved folder", "path", path)
				continue
			}
			result.Folders = append(result.Folders, path)
			if err := s.scanDir(path, result); err != nil {
				return err
			}
			continue
		}

		// Sockets, devices and pipes are left alone; symlinks move like files.
		if !entry.Type().IsRegular() && entry.Type()&os.ModeSymlink == 0 {
			s.logger.Debug("skipping irregular file", "path", path, "mode", entry.Type().String())
			continue
		}
		// A relative link would dangle once moved to another folder.
		if entry.Type()&os.ModeSymlink != 0 {
			if target, err := os.Readlink(path); err != nil || !filepath.IsAbs(target) {
				s.logger.Debug("skipping relative symlink", "path", path, "target", target)
				continue
			}
		}

		s.addFile(path, entry, result)
	}

	return nil
}

func (s *Scanner) addFile(path string, entry os.DirEntry, result *ScanResult) {
	fe := FileEntry{
		Path: path,
		Name: entry.Name(),
		Ext:  classify.ExtensionOf(entry.Name()),
	}
	if info, err := entry.Info(); err == nil {
		fe.Size = info.Size()
	}

	if fe.Ext == "" {
		result.Other = append(result.Other, fe)
		return
	}

	category, ok := s.table.CategoryOf(fe.Ext)
	if !ok {
		result.Unknown[fe.Ext] = struct{}{}
		result.Other = append(result.Other, fe)
		return
	}

	result.Extensions[fe.Ext] = struct{}{}
	result.Files[category.Name] = append(result.Files[category.Name], fe)
}
