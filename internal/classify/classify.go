package classify

import (
	"fmt"
	"strings"

	"github.com/fenilsonani/declutter/internal/translit"
)

// Kind selects how files of a category are relocated
type Kind string

const (
	KindMedia   Kind = "media"
	KindArchive Kind = "archive"
)

// OtherFolder is the destination for extensionless and unrecognized files.
// It is always reserved, whether or not other files are relocated.
const OtherFolder = "other_files"

// Category describes one semantic group of extensions and where its files go
type Category struct {
	Name         string   `yaml:"name" toml:"name" json:"name"`
	Folder       string   `yaml:"folder" toml:"folder" json:"folder"`
	Kind         Kind     `yaml:"kind" toml:"kind" json:"kind"`
	PerExtension bool     `yaml:"per_extension" toml:"per_extension" json:"per_extension"`
	Extensions   []string `yaml:"extensions" toml:"extensions" json:"extensions"`

	// Subfolders renames per-extension folders, e.g. JPG -> JPEG so both
	// spellings share one folder.
	Subfolders map[string]string `yaml:"subfolders,omitempty" toml:"subfolders,omitempty" json:"subfolders,omitempty"`
}

// SubfolderFor returns the folder below Folder that files with ext go to,
// or "" when the category is flat.
func (c Category) SubfolderFor(ext string) string {
	if !c.PerExtension {
		return ""
	}
	if sub, ok := c.Subfolders[ext]; ok {
		return sub
	}
	return ext
}

// DefaultCategories returns the built-in category table
func DefaultCategories() []Category {
	return []Category{
		{
			Name:         "images",
			Folder:       "images",
			Kind:         KindMedia,
			PerExtension: true,
			Extensions:   []string{"JPEG", "PNG", "JPG", "SVG"},
			Subfolders:   map[string]string{"JPG": "JPEG"},
		},
		{Name: "audio", Folder: "audio", Kind: KindMedia, Extensions: []string{"MP3", "OGG", "WAV", "AMR"}},
		{Name: "video", Folder: "video", Kind: KindMedia, Extensions: []string{"AVI", "MP4", "MOV", "MKV"}},
		{Name: "documents", Folder: "documents", Kind: KindMedia, Extensions: []string{"DOC", "DOCX", "TXT", "PDF", "XLSX", "PPTX"}},
		{Name: "archives", Folder: "archives", Kind: KindArchive, Extensions: []string{"ZIP", "GZ", "TAR"}},
	}
}

// Table maps extension tokens to categories. It is read-only after NewTable.
type Table struct {
	categories []Category
	byExt      map[string]int
}

// NewTable builds a lookup table. Extensions are upper-cased; an extension
// claimed by two categories is an error, as is a folder name used twice.
func NewTable(categories []Category) (*Table, error) {
	t := &Table{
		categories: make([]Category, 0, len(categories)),
		byExt:      make(map[string]int),
	}
	names := make(map[string]bool)
	folders := map[string]bool{OtherFolder: true}

	for _, c := range categories {
		if c.Name == "" {
			return nil, fmt.Errorf("category name must not be empty")
		}
		if names[c.Name] {
			return nil, fmt.Errorf("duplicate category name: %s", c.Name)
		}
		names[c.Name] = true

		if err := ValidateFolderName(c.Folder); err != nil {
			return nil, fmt.Errorf("category %s: %w", c.Name, err)
		}
		if folders[c.Folder] {
			return nil, fmt.Errorf("category %s: folder %q already in use", c.Name, c.Folder)
		}
		folders[c.Folder] = true

		switch c.Kind {
		case KindMedia, KindArchive:
		default:
			return nil, fmt.Errorf("category %s: unknown kind %q", c.Name, c.Kind)
		}
		if len(c.Extensions) == 0 {
			return nil, fmt.Errorf("category %s: no extensions", c.Name)
		}

		exts := make([]string, 0, len(c.Extensions))
		for _, ext := range c.Extensions {
			ext = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if ext == "" {
				return nil, fmt.Errorf("category %s: empty extension", c.Name)
			}
			if owner, ok := t.byExt[ext]; ok {
				return nil, fmt.Errorf("extension %s claimed by both %s and %s", ext, t.categories[owner].Name, c.Name)
			}
			t.byExt[ext] = len(t.categories)
			exts = append(exts, ext)
		}
		c.Extensions = exts

		if len(c.Subfolders) > 0 {
			subs := make(map[string]string, len(c.Subfolders))
			for ext, folder := range c.Subfolders {
				if err := ValidateFolderName(folder); err != nil {
					return nil, fmt.Errorf("category %s: subfolder for %s: %w", c.Name, ext, err)
				}
				subs[strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(ext), "."))] = folder
			}
			c.Subfolders = subs
		}
		t.categories = append(t.categories, c)
	}

	return t, nil
}

// ValidateFolderName rejects names that are not a single path element
func ValidateFolderName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("folder name must not be empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid folder name: %s", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("folder name must not contain a path separator: %s", name)
	}
	return nil
}

// CategoryOf looks up an extension token. The token is expected upper-case,
// as returned by ExtensionOf.
func (t *Table) CategoryOf(ext string) (Category, bool) {
	i, ok := t.byExt[ext]
	if !ok {
		return Category{}, false
	}
	return t.categories[i], true
}

// Categories returns the categories in configured order
func (t *Table) Categories() []Category {
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// ReservedFolders returns every output folder name, including OtherFolder
func (t *Table) ReservedFolders() []string {
	out := make([]string, 0, len(t.categories)+1)
	for _, c := range t.categories {
		out = append(out, c.Folder)
	}
	return append(out, OtherFolder)
}

// ExtensionOf returns the upper-cased text after the last dot of filename,
// or "" when there is none. Dotfiles such as ".bashrc" have no extension.
func ExtensionOf(filename string) string {
	_, ext := translit.SplitExt(filename)
	return strings.ToUpper(ext)
}
