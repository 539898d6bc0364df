package scanner

import (
	"fmt"
	"sort"
)

// FileEntry represents a file found during scanning
type FileEntry struct {
	Path string `json:"path" yaml:"path"`
	Name string `json:"name" yaml:"name"`
	Ext  string `json:"ext,omitempty" yaml:"ext,omitempty"` // upper-case, no dot
	Size int64  `json:"size" yaml:"size"`
}

// ScanResult holds everything one scan pass found. A fresh value is built
// for every call to Scan and is owned by a single run.
type ScanResult struct {
	Root       string                 `json:"root" yaml:"root"`
	Files      map[string][]FileEntry `json:"files" yaml:"files"` // keyed by category name
	Other      []FileEntry            `json:"other" yaml:"other"`
	Folders    []string               `json:"folders" yaml:"folders"` // discovery order, parents first
	Extensions map[string]struct{}    `json:"-" yaml:"-"`
	Unknown    map[string]struct{}    `json:"-" yaml:"-"`
}

// NewScanResult returns an empty result for root
func NewScanResult(root string) *ScanResult {
	return &ScanResult{
		Root:       root,
		Files:      make(map[string][]FileEntry),
		Other:      []FileEntry{},
		Folders:    []string{},
		Extensions: make(map[string]struct{}),
		Unknown:    make(map[string]struct{}),
	}
}

// TotalFiles counts category and other files
func (r *ScanResult) TotalFiles() int {
	n := len(r.Other)
	for _, files := range r.Files {
		n += len(files)
	}
	return n
}

// SortedExtensions returns the recognized extensions seen, sorted
func (r *ScanResult) SortedExtensions() []string {
	return sortedKeys(r.Extensions)
}

// SortedUnknown returns the unrecognized extensions seen, sorted
func (r *ScanResult) SortedUnknown() []string {
	return sortedKeys(r.Unknown)
}

// FoldersDeepestFirst returns the scanned folders in reverse discovery order
func (r *ScanResult) FoldersDeepestFirst() []string {
	out := make([]string, len(r.Folders))
	for i, f := range r.Folders {
		out[len(r.Folders)-1-i] = f
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// UnreadableError reports a directory that could not be listed. It aborts
// the scan: relocating from a partial scan would leave the tree half done.
type UnreadableError struct {
	Path string
	Err  error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("cannot read directory %s: %v", e.Path, e.Err)
}

func (e *UnreadableError) Unwrap() error {
	return e.Err
}
