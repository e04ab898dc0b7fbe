package mimeutil

import (
	"testing"
)

func TestValidUTF8(t *testing.T) {
	type testRow struct {
		name   string
		input  string
		expect bool
	}

	testData := []testRow{
		{"empty", "", true},
		{"ascii", "report.pdf", true},
		{"multibyte", "résumé.txt", true},
		{"lone-continuation", "a\x80b", false},
		{"truncated", "\xe2\x82", false},
		{"overlong", "\xc0\xaf", false},
		{"surrogate", "\xed\xa0\x80", false},
	}

	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			if actual := ValidUTF8(row.input); actual != row.expect {
				t.Errorf("ValidUTF8(%q): expected %v, got %v", row.input, row.expect, actual)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	type testRow struct {
		input  string
		expect string
	}

	testData := []testRow{
		{"", ""},
		{"file.txt", "file.txt"},
		{"/usr/share/mime/globs", "globs"},
		{"dir/", ""},
		{"/", ""},
		{"a/b/.hidden", ".hidden"},
	}

	for _, row := range testData {
		if actual := BaseName(row.input); actual != row.expect {
			t.Errorf("BaseName(%q): expected %q, got %q", row.input, row.expect, actual)
		}
	}
}

func TestHasMediaSlash(t *testing.T) {
	type testRow struct {
		input  string
		expect bool
	}

	testData := []testRow{
		{"text/plain", true},
		{"application/vnd.oasis.opendocument.text", true},
		{"text", false},
		{"/plain", false},
		{"text/", false},
		{"a/b/c", false},
	}

	for _, row := range testData {
		if actual := HasMediaSlash(row.input); actual != row.expect {
			t.Errorf("HasMediaSlash(%q): expected %v, got %v", row.input, row.expect, actual)
		}
	}
}
