package organizer

import (
	"time"

	"github.com/fenilsonani/declutter/internal/relocator"
)

// IssueKind classifies a non-fatal problem met during a run
type IssueKind string

const (
	IssueNotAnArchive  IssueKind = "not_an_archive"
	IssueExtractFailed IssueKind = "extract_failed"
	IssueMoveFailed    IssueKind = "move_failed"
	IssueFolderKept    IssueKind = "folder_kept"
)

// Issue is one file or folder the run could not fully handle
type Issue struct {
	Kind   IssueKind `json:"kind" yaml:"kind"`
	Path   string    `json:"path" yaml:"path"`
	Detail string    `json:"detail" yaml:"detail"`
}

// Summary describes what a run did, or in dry-run mode what it would do
type Summary struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Root       string    `json:"root" yaml:"root"`
	DryRun     bool      `json:"dry_run" yaml:"dry_run"`
	Declined   bool      `json:"declined,omitempty" yaml:"declined,omitempty"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	// Error is set when the run stopped early
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Moved counts relocated files per category; other files are counted
	// under classify.OtherFolder.
	Moved      map[string]int `json:"moved" yaml:"moved"`
	BytesMoved int64          `json:"bytes_moved" yaml:"bytes_moved"`
	OtherLeft  int            `json:"other_left" yaml:"other_left"`

	ArchivesExtracted int `json:"archives_extracted" yaml:"archives_extracted"`
	ArchivesRejected  int `json:"archives_rejected" yaml:"archives_rejected"`

	FoldersRemoved int `json:"folders_removed" yaml:"folders_removed"`
	FoldersKept    int `json:"folders_kept" yaml:"folders_kept"`

	Extensions []string `json:"extensions" yaml:"extensions"`
	Unknown    []string `json:"unknown_extensions" yaml:"unknown_extensions"`

	Issues []Issue `json:"issues" yaml:"issues"`

	// MoveErrors keeps the typed errors behind move_failed issues
	MoveErrors []*relocator.MoveError `json:"-" yaml:"-"`
}

func newSummary(runID, root string, dryRun bool) *Summary {
	return &Summary{
		RunID:      runID,
		Root:       root,
		DryRun:     dryRun,
		StartedAt:  time.Now(),
		Moved:      make(map[string]int),
		Extensions: []string{},
		Unknown:    []string{},
		Issues:     []Issue{},
	}
}

// TotalMoved returns the number of files relocated across all categories
func (s *Summary) TotalMoved() int {
	n := 0
	for _, c := range s.Moved {
		n += c
	}
	return n
}

// Duration returns how long the run took
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// IssuesOf returns the issues of one kind
func (s *Summary) IssuesOf(kind IssueKind) []Issue {
	var out []Issue
	for _, is := range s.Issues {
		if is.Kind == kind {
			out = append(out, is)
		}
	}
	return out
}

// HasFailures reports whether the run stopped early or any file could not
// be handled. Folders left in place do not count.
func (s *Summary) HasFailures() bool {
	if s.Error != "" {
		return true
	}
	for _, is := range s.Issues {
		if is.Kind != IssueFolderKept {
			return true
		}
	}
	return false
}

func (s *Summary) addIssue(kind IssueKind, path string, err error) {
	s.Issues = append(s.Issues, Issue{Kind: kind, Path: path, Detail: err.Error()})
}
