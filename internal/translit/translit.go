// Package translit turns arbitrary filenames into ASCII-safe names.
//
// Cyrillic letters are replaced through a fixed table; whatever is left that
// is not an ASCII letter or digit becomes an underscore.
package translit

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// cyrillicLower and latinLower are parallel sequences: the i-th rune maps to
// the i-th replacement. Empty replacements delete the rune.
var (
	cyrillicLower = []rune("абвгдеёжзийклмнопрстуфхцчшщъыьэюяєіїґ")
	latinLower    = []string{
		"a", "b", "v", "g", "d", "e", "e", "j", "z", "i", "j", "k",
		"l", "m", "n", "o", "p", "r", "s", "t", "u", "f", "h", "ts",
		"ch", "sh", "sch", "", "y", "", "e", "yu", "ja", "je", "i", "ji", "g",
	}
	cyrillicUpper = []rune("АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯЄІЇҐ")
	latinUpper    = []string{
		"A", "B", "V", "G", "D", "E", "E", "J", "Z", "I", "J", "K",
		"L", "M", "N", "O", "P", "R", "S", "T", "U", "F", "H", "TS",
		"CH", "SH", "SCH", "", "Y", "", "E", "YU", "JA", "JE", "I", "JI", "G",
	}
)

var table = buildTable()

func buildTable() map[rune]string {
	if len(cyrillicLower) != len(latinLower) || len(cyrillicUpper) != len(latinUpper) {
		panic("translit: source and replacement sequences differ in length")
	}
	m := make(map[rune]string, len(cyrillicLower)+len(cyrillicUpper))
	for i, r := range cyrillicLower {
		m[r] = latinLower[i]
	}
	for i, r := range cyrillicUpper {
		m[r] = latinUpper[i]
	}
	return m
}

// Lookup returns the replacement for r and whether r is in the table.
func Lookup(r rune) (string, bool) {
	s, ok := table[r]
	return s, ok
}

// Normalize transliterates name and replaces every remaining character that
// is not an ASCII letter or digit with '_'. The extension dot is not special:
// "a.jpg" becomes "a_jpg". Use Filename to keep the extension.
func Normalize(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if repl, ok := table[r]; ok {
			// Replacements are plain ASCII letters.
			b.WriteString(repl)
			continue
		}
		if isASCIIAlnum(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Filename normalizes the stem of name and re-attaches its extension, itself
// sanitized. A stem that normalizes to nothing becomes "unnamed".
//
//	Filename("Привет мир.txt") == "Privet_mir.txt"
func Filename(name string) string {
	stem, ext := SplitExt(name)
	out := Normalize(stem)
	if out == "" {
		out = "unnamed"
	}
	if ext != "" {
		out += "." + Normalize(ext)
	}
	return out
}

// SplitExt splits name at its last dot. A leading dot does not start an
// extension, so ".bashrc" has no extension and "notes." has none either.
func SplitExt(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
