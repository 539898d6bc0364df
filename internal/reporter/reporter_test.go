package reporter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/declutter/internal/organizer"
	"github.com/fenilsonani/declutter/internal/relocator"
)

func sampleSummary() *organizer.Summary {
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &organizer.Summary{
		RunID:             "c0ffee00-0000-4000-8000-000000000000",
		Root:              "/data/inbox",
		StartedAt:         started,
		FinishedAt:        started.Add(1500 * time.Millisecond),
		Moved:             map[string]int{"images": 2, "documents": 1},
		BytesMoved:        2048,
		ArchivesExtracted: 1,
		ArchivesRejected:  1,
		FoldersRemoved:    3,
		FoldersKept:       1,
		Extensions:        []string{"DOCX", "JPG", "ZIP"},
		Unknown:           []string{"EXE"},
		Issues: []organizer.Issue{
			{Kind: organizer.IssueNotAnArchive, Path: "/data/inbox/fake.zip", Detail: "not an archive"},
			{Kind: organizer.IssueFolderKept, Path: "/data/inbox/project", Detail: "folder not empty"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"summary", "table", "json", "yaml"} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", name, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestReportSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatSummary).Report(sampleSummary()); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Declutter Summary",
		"/data/inbox",
		"Moved: 3 files, 2.0 KiB",
		"images: 2 files",
		"documents: 1 files",
		"Archives: 1 extracted, 1 rejected",
		"Folders: 3 removed, 1 left in place",
		"Unknown extensions: EXE",
		"Problems: 1",
		"[not_an_archive] /data/inbox/fake.zip",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[folder_kept]") {
		t.Error("kept folders are not listed as problems")
	}
}

func TestReportSummaryDryRunAndDeclined(t *testing.T) {
	s := sampleSummary()
	s.DryRun = true
	s.Issues = nil

	var buf bytes.Buffer
	if err := New(&buf, FormatSummary).Report(s); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Would move: 3 files") {
		t.Errorf("dry-run summary should use conditional wording:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Done.") {
		t.Errorf("clean run should end with Done:\n%s", buf.String())
	}

	s.Declined = true
	buf.Reset()
	if err := New(&buf, FormatSummary).Report(s); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !strings.Contains(buf.String(), "nothing was moved") {
		t.Errorf("declined summary:\n%s", buf.String())
	}
}

func TestReportSummaryListsMoveErrors(t *testing.T) {
	s := sampleSummary()
	me := &relocator.MoveError{Path: "/data/inbox/a.jpg", Reason: relocator.ErrorPermissionDenied, Original: os.ErrPermission}
	s.MoveErrors = []*relocator.MoveError{me}
	s.Issues = append(s.Issues, organizer.Issue{Kind: organizer.IssueMoveFailed, Path: me.Path, Detail: me.Error()})

	var buf bytes.Buffer
	if err := New(&buf, FormatSummary).Report(s); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Problems: 2") {
		t.Errorf("expected two problems:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "/data/inbox/a.jpg") {
		t.Errorf("move error path missing:\n%s", buf.String())
	}
}

func TestReportTable(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatTable).Report(sampleSummary()); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"CATEGORY", "images", "documents", "TOTAL", "2.0 KiB", "not_an_archive", "folder_kept"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestReportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatJSON).Report(sampleSummary()); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	checks := map[string]any{
		"run_id":                "c0ffee00-0000-4000-8000-000000000000",
		"total_moved":           float64(3),
		"bytes_moved":           float64(2048),
		"bytes_moved_formatted": "2.0 KiB",
		"duration_ms":           float64(1500),
		"failed":                true,
		"archives_rejected":     float64(1),
	}
	for key, want := range checks {
		if got[key] != want {
			t.Errorf("%s = %v, want %v", key, got[key], want)
		}
	}
	if issues, ok := got["issues"].([]any); !ok || len(issues) != 2 {
		t.Errorf("issues = %v", got["issues"])
	}
}

func TestReportYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatYAML).Report(sampleSummary()); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
	}
	if got["root"] != "/data/inbox" {
		t.Errorf("root = %v", got["root"])
	}
	if got["total_moved"] != 3 {
		t.Errorf("total_moved = %v", got["total_moved"])
	}
	moved, ok := got["moved"].(map[string]any)
	if !ok || moved["images"] != 2 {
		t.Errorf("moved = %v", got["moved"])
	}
}

func TestReportUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, OutputFormat("xml")).Report(sampleSummary()); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := SaveToFile(sampleSummary(), path, FormatJSON); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !json.Valid(data) {
		t.Errorf("saved report is not JSON:\n%s", data)
	}

	if err := SaveToFile(sampleSummary(), filepath.Join(t.TempDir(), "missing", "r.json"), FormatJSON); err == nil {
		t.Error("expected error for missing directory")
	}
}
