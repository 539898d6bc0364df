package translit

import (
	"testing"
	"unicode/utf8"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"ascii untouched", "report2024", "report2024"},
		{"dot becomes underscore", "a.jpg", "a_jpg"},
		{"greeting", "Привет мир", "Privet_mir"},
		{"multi letter replacements", "щука чай", "schuka_chaj"},
		{"uppercase multi letter", "ЩУКА", "SCHUKA"},
		{"silent letters deleted", "объезд", "obezd"},
		{"soft sign deleted", "Ь", ""},
		{"ukrainian letters", "їжак ґанок є", "jijak_ganok_je"},
		{"punctuation", "a-b (c)!", "a_b__c__"},
		{"unmapped non ascii", "café", "caf_"},
		{"emoji is one underscore", "x😀y", "x_y"},
		{"tabs and newlines", "a\tb\nc", "a_b_c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDecomposedInput(t *testing.T) {
	// "й" written as и + combining breve.
	decomposed := "\u0438\u0306"
	if got := Normalize(decomposed); got != "j" {
		t.Errorf("Normalize(decomposed й) = %q, want %q", got, "j")
	}
}

func TestNormalizeOutputAlphabet(t *testing.T) {
	inputs := []string{
		"Привет мир.txt",
		"日本語のファイル.doc",
		"\x00\x01\xff\xfe",
		"Ёлка и ЁЖИК — 2 шт.",
		"ΑΒΓ δεζ",
		"   ",
		"../../etc/passwd",
	}

	for _, in := range inputs {
		out := Normalize(in)
		for i := 0; i < len(out); i++ {
			c := out[i]
			if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
				t.Errorf("Normalize(%q) = %q contains byte %q", in, out, c)
				break
			}
		}
		if !utf8.ValidString(out) {
			t.Errorf("Normalize(%q) produced invalid UTF-8", in)
		}
	}
}

func TestTableCoverage(t *testing.T) {
	for i, r := range cyrillicLower {
		got, ok := Lookup(r)
		if !ok {
			t.Fatalf("rune %q missing from table", r)
		}
		if got != latinLower[i] {
			t.Errorf("Lookup(%q) = %q, want %q", r, got, latinLower[i])
		}
	}
	for i, r := range cyrillicUpper {
		got, ok := Lookup(r)
		if !ok {
			t.Fatalf("rune %q missing from table", r)
		}
		if got != latinUpper[i] {
			t.Errorf("Lookup(%q) = %q, want %q", r, got, latinUpper[i])
		}
	}
	if _, ok := Lookup('q'); ok {
		t.Error("ASCII letters must not be in the table")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Привет мир.txt", "Privet_mir.txt"},
		{"a.jpg", "a.jpg"},
		{"photo 1.JPEG", "photo_1.JPEG"},
		{"archive.tar.gz", "archive_tar.gz"},
		{"notes", "notes"},
		{".bashrc", "_bashrc"},
		{"ъ.txt", "unnamed.txt"},
		{"file.тхт", "file.tht"},
	}

	for _, tt := range tests {
		if got := Filename(tt.in); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitExt(t *testing.T) {
	tests := []struct {
		in       string
		wantStem string
		wantExt  string
	}{
		{"a.jpg", "a", "jpg"},
		{"a.b.c", "a.b", "c"},
		{".bashrc", ".bashrc", ""},
		{"notes", "notes", ""},
		{"trailing.", "trailing.", ""},
	}

	for _, tt := range tests {
		stem, ext := SplitExt(tt.in)
		if stem != tt.wantStem || ext != tt.wantExt {
			t.Errorf("SplitExt(%q) = (%q, %q), want (%q, %q)", tt.in, stem, ext, tt.wantStem, tt.wantExt)
		}
	}
}
