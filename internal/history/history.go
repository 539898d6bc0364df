// Package history keeps a small journal of past runs, one JSON file each.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fenilsonani/declutter/internal/organizer"
)

// ErrNoRecords is returned by Latest when the journal is empty
var ErrNoRecords = errors.New("no runs recorded")

// Record is the journal entry for one run
type Record struct {
	ID                string        `json:"id"`
	Root              string        `json:"root"`
	Timestamp         time.Time     `json:"timestamp"`
	Duration          time.Duration `json:"duration"`
	DryRun            bool          `json:"dry_run"`
	Declined          bool          `json:"declined,omitempty"`
	Moved             int           `json:"moved"`
	BytesMoved        int64         `json:"bytes_moved"`
	ArchivesExtracted int           `json:"archives_extracted"`
	FoldersRemoved    int           `json:"folders_removed"`
	Issues            int           `json:"issues"`
	Failed            bool          `json:"failed"`
	Error             string        `json:"error,omitempty"`
}

// FromSummary condenses a run summary into a record
func FromSummary(s *organizer.Summary) *Record {
	return &Record{
		ID:                s.RunID,
		Root:              s.Root,
		Timestamp:         s.StartedAt,
		Duration:          s.Duration(),
		DryRun:            s.DryRun,
		Declined:          s.Declined,
		Moved:             s.TotalMoved(),
		BytesMoved:        s.BytesMoved,
		ArchivesExtracted: s.ArchivesExtracted,
		FoldersRemoved:    s.FoldersRemoved,
		Issues:            len(s.Issues),
		Failed:            s.HasFailures(),
		Error:             s.Error,
	}
}

// Store reads and writes records in one directory
type Store struct {
	dir string
}

// DefaultDir returns ~/.local/state/declutter/history
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "state", "declutter", "history"), nil
}

// NewStore opens the journal in dir, creating it if needed. An empty dir
// means DefaultDir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the journal directory
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a record. Records without an ID or timestamp are rejected.
func (s *Store) Save(r *Record) error {
	if r.ID == "" {
		return fmt.Errorf("record has no id")
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	filename := filepath.Join(s.dir, r.ID+".json")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Load reads one record by run ID
func (s *Store) Load(id string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", id, err)
	}
	return &r, nil
}

// List returns every readable record, newest first
func (s *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var records []*Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		r, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			// a half-written or foreign file
			continue
		}
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

// Latest returns the most recent record
func (s *Store) Latest() (*Record, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records[0], nil
}

// Delete removes a record by run ID
func (s *Store) Delete(id string) error {
	if err := os.Remove(filepath.Join(s.dir, id+".json")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Prune deletes records older than days and returns how many went.
// days <= 0 keeps everything.
func (s *Store) Prune(days int) (int, error) {
	if days <= 0 {
		return 0, nil
	}
	records, err := s.List()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	removed := 0
	for _, r := range records {
		if !r.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.Delete(r.ID); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}
