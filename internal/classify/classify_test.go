package classify

import (
	"strings"
	"testing"
)

func TestExtensionOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "JPG"},
		{"photo.JPEG", "JPEG"},
		{"archive.tar.gz", "GZ"},
		{"notes", ""},
		{".bashrc", ""},
		{"trailing.", ""},
		{"Привет мир.txt", "TXT"},
		{"weird.Тхт", "ТХТ"},
	}

	for _, tt := range tests {
		if got := ExtensionOf(tt.in); got != tt.want {
			t.Errorf("ExtensionOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultTableRoundTrip(t *testing.T) {
	table, err := NewTable(DefaultCategories())
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	for _, c := range DefaultCategories() {
		for _, ext := range c.Extensions {
			got, ok := table.CategoryOf(ext)
			if !ok {
				t.Errorf("CategoryOf(%s) not found", ext)
				continue
			}
			if got.Name != c.Name {
				t.Errorf("CategoryOf(%s) = %s, want %s", ext, got.Name, c.Name)
			}
		}
	}

	if _, ok := table.CategoryOf("EXE"); ok {
		t.Error("EXE should be unrecognized")
	}
	if _, ok := table.CategoryOf("jpg"); ok {
		t.Error("lookup is on upper-case tokens only")
	}
}

func TestNewTableNormalizesExtensions(t *testing.T) {
	table, err := NewTable([]Category{
		{Name: "books", Folder: "books", Kind: KindMedia, Extensions: []string{".epub", " mobi "}},
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	for _, ext := range []string{"EPUB", "MOBI"} {
		if _, ok := table.CategoryOf(ext); !ok {
			t.Errorf("CategoryOf(%s) not found", ext)
		}
	}
}

func TestNewTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		cats    []Category
		wantErr string
	}{
		{
			name:    "empty name",
			cats:    []Category{{Folder: "x", Kind: KindMedia, Extensions: []string{"A"}}},
			wantErr: "name must not be empty",
		},
		{
			name: "duplicate extension",
			cats: []Category{
				{Name: "a", Folder: "a", Kind: KindMedia, Extensions: []string{"TXT"}},
				{Name: "b", Folder: "b", Kind: KindMedia, Extensions: []string{"txt"}},
			},
			wantErr: "claimed by both",
		},
		{
			name: "duplicate folder",
			cats: []Category{
				{Name: "a", Folder: "same", Kind: KindMedia, Extensions: []string{"A"}},
				{Name: "b", Folder: "same", Kind: KindMedia, Extensions: []string{"B"}},
			},
			wantErr: "already in use",
		},
		{
			name:    "folder collides with other_files",
			cats:    []Category{{Name: "a", Folder: OtherFolder, Kind: KindMedia, Extensions: []string{"A"}}},
			wantErr: "already in use",
		},
		{
			name:    "nested folder",
			cats:    []Category{{Name: "a", Folder: "x/y", Kind: KindMedia, Extensions: []string{"A"}}},
			wantErr: "path separator",
		},
		{
			name:    "unknown kind",
			cats:    []Category{{Name: "a", Folder: "a", Kind: "weird", Extensions: []string{"A"}}},
			wantErr: "unknown kind",
		},
		{
			name:    "no extensions",
			cats:    []Category{{Name: "a", Folder: "a", Kind: KindMedia}},
			wantErr: "no extensions",
		},
		{
			name:    "blank extension",
			cats:    []Category{{Name: "a", Folder: "a", Kind: KindMedia, Extensions: []string{"."}}},
			wantErr: "empty extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.cats)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestReservedFolders(t *testing.T) {
	table, err := NewTable(DefaultCategories())
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	got := table.ReservedFolders()
	want := []string{"images", "audio", "video", "documents", "archives", "other_files"}
	if len(got) != len(want) {
		t.Fatalf("ReservedFolders() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ReservedFolders()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSubfolderFor(t *testing.T) {
	table, err := NewTable(DefaultCategories())
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	images, _ := table.CategoryOf("PNG")
	tests := []struct {
		ext  string
		want string
	}{
		{"PNG", "PNG"},
		{"JPEG", "JPEG"},
		{"JPG", "JPEG"},
		{"SVG", "SVG"},
	}
	for _, tt := range tests {
		if got := images.SubfolderFor(tt.ext); got != tt.want {
			t.Errorf("SubfolderFor(%s) = %q, want %q", tt.ext, got, tt.want)
		}
	}

	docs, _ := table.CategoryOf("PDF")
	if got := docs.SubfolderFor("PDF"); got != "" {
		t.Errorf("flat category SubfolderFor() = %q, want empty", got)
	}
}

func TestNewTableSubfolderKeysNormalized(t *testing.T) {
	table, err := NewTable([]Category{{
		Name: "pics", Folder: "pics", Kind: KindMedia, PerExtension: true,
		Extensions: []string{"tif", "tiff"},
		Subfolders: map[string]string{".tif": "TIFF"},
	}})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	c, _ := table.CategoryOf("TIF")
	if got := c.SubfolderFor("TIF"); got != "TIFF" {
		t.Errorf("SubfolderFor(TIF) = %q, want TIFF", got)
	}
}

func TestNewTableRejectsBadSubfolder(t *testing.T) {
	_, err := NewTable([]Category{{
		Name: "pics", Folder: "pics", Kind: KindMedia, PerExtension: true,
		Extensions: []string{"PNG"},
		Subfolders: map[string]string{"PNG": "../escape"},
	}})
	if err == nil {
		t.Fatal("expected error for subfolder with a separator")
	}
}
