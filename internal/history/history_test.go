package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilsonani/declutter/internal/organizer"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history"))
	require.NoError(t, err)
	return s
}

func TestFromSummary(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s := &organizer.Summary{
		RunID:             "run-1",
		Root:              "/data/inbox",
		StartedAt:         start,
		FinishedAt:        start.Add(2 * time.Second),
		Moved:             map[string]int{"images": 2, "other_files": 1},
		BytesMoved:        300,
		ArchivesExtracted: 1,
		FoldersRemoved:    4,
		Issues: []organizer.Issue{
			{Kind: organizer.IssueNotAnArchive, Path: "/data/inbox/x.zip"},
		},
	}

	r := FromSummary(s)
	assert.Equal(t, "run-1", r.ID)
	assert.Equal(t, 3, r.Moved)
	assert.Equal(t, 2*time.Second, r.Duration)
	assert.Equal(t, 1, r.Issues)
	assert.True(t, r.Failed)
}

func TestFromFailedSummary(t *testing.T) {
	s := &organizer.Summary{RunID: "run-2", Error: "scan failed: permission denied"}

	r := FromSummary(s)
	assert.True(t, r.Failed)
	assert.Equal(t, "scan failed: permission denied", r.Error)
}

func TestSaveLoad(t *testing.T) {
	s := newStore(t)
	rec := &Record{ID: "abc", Root: "/data", Timestamp: time.Now().UTC().Truncate(time.Second), Moved: 7}

	require.NoError(t, s.Save(rec))
	got, err := s.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestSaveRequiresID(t *testing.T) {
	s := newStore(t)
	assert.Error(t, s.Save(&Record{}))
}

func TestListNewestFirstSkipsJunk(t *testing.T) {
	s := newStore(t)
	now := time.Now()
	require.NoError(t, s.Save(&Record{ID: "old", Timestamp: now.Add(-time.Hour)}))
	require.NoError(t, s.Save(&Record{ID: "new", Timestamp: now}))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0644))

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "new", records[0].ID)
	assert.Equal(t, "old", records[1].ID)

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "new", latest.ID)
}

func TestLatestEmpty(t *testing.T) {
	_, err := newStore(t).Latest()
	assert.True(t, errors.Is(err, ErrNoRecords))
}

func TestPrune(t *testing.T) {
	s := newStore(t)
	now := time.Now()
	require.NoError(t, s.Save(&Record{ID: "ancient", Timestamp: now.AddDate(0, 0, -40)}))
	require.NoError(t, s.Save(&Record{ID: "recent", Timestamp: now.AddDate(0, 0, -1)}))

	n, err := s.Prune(0)
	require.NoError(t, err)
	assert.Zero(t, n, "zero days keeps everything")

	n, err = s.Prune(30)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "recent", records[0].ID)
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	assert.NoError(t, newStore(t).Delete("nope"))
}
