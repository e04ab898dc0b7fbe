package mimeglob

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	type testRow struct {
		name     string
		line     string
		pattern  string
		mimeType string
		weight   int
		err      error
	}

	testData := []testRow{
		{"weighted", "50:*.txt:text/plain", "*.txt", "text/plain", 50, nil},
		{"legacy", "*.txt:text/plain", "*.txt", "text/plain", DefaultWeight, nil},
		{"zero-weight", "0:README:text/x-readme", "README", "text/x-readme", 0, nil},
		{"digits-glob", "123:text/plain", "123", "text/plain", DefaultWeight, nil},
		{"trailing-space", "80:*.pdf:application/pdf ", "*.pdf", "application/pdf", 80, nil},
		{"weight-too-big", "101:*.txt:text/plain", "", "", 0, ErrBadWeight},
		{"no-sep", "*.txt text/plain", "", "", 0, ErrMissingSep},
		{"no-glob", "50::text/plain", "", "", 0, ErrEmptyGlob},
		{"no-type", "*.txt:", "", "", 0, ErrBadMimeType},
		{"bad-utf8", "*.\xff:text/plain", "", "", 0, ErrBadEncoding},
	}

	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			pattern, mimeType, weight, err := ParseLine(row.line)
			if !errors.Is(err, row.err) {
				t.Fatalf("expected error %v, got %v", row.err, err)
			}
			if err != nil {
				return
			}
			if pattern != row.pattern || mimeType != row.mimeType || weight != row.weight {
				t.Errorf("expected (%q, %q, %d), got (%q, %q, %d)", row.pattern, row.mimeType, row.weight, pattern, mimeType, weight)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	const input = "# comment\n" +
		"\n" +
		"50:*.txt:text/plain\n" +
		"garbage line\n" +
		"*.pdf:application/pdf\r\n" +
		"200:*.bad:text/x-bad\n" +
		"90:Makefile:text/x-makefile"

	table := New()
	stats, err := table.Load(strings.NewReader(input), "globs")
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if stats.Added != 3 {
		t.Errorf("Added: expected 3, got %d", stats.Added)
	}
	if len(stats.Skipped) != 2 {
		t.Fatalf("Skipped: expected 2, got %d: %v", len(stats.Skipped), stats.Skipped)
	}

	var perr ParseError
	if !errors.As(stats.Skipped[0], &perr) || perr.Line != 4 {
		t.Errorf("Skipped[0]: expected ParseError at line 4, got %v", stats.Skipped[0])
	}
	if !errors.Is(stats.Skipped[1], ErrBadWeight) {
		t.Errorf("Skipped[1]: expected ErrBadWeight, got %v", stats.Skipped[1])
	}

	for name, expect := range map[string]string{
		"a.txt":    "text/plain",
		"b.pdf":    "application/pdf",
		"Makefile": "text/x-makefile",
	} {
		if actual, _ := table.BestMatch(name); actual != expect {
			t.Errorf("BestMatch(%q): expected %q, got %q", name, expect, actual)
		}
	}
}

func TestLoadFile_Additive(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "user-globs")
	system := filepath.Join(dir, "system-globs")
	if err := os.WriteFile(user, []byte("50:*.conf:text/x-user-conf\n"), 0666); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(system, []byte("50:*.conf:text/x-system-conf\n50:*.ini:text/x-ini\n"), 0666); err != nil {
		t.Fatal(err)
	}

	table := New()
	for _, path := range []string{user, system} {
		if _, err := table.LoadFile(path); err != nil {
			t.Fatalf("LoadFile(%q): unexpected error: %v", path, err)
		}
	}

	if actual, _ := table.BestMatch("a.conf"); actual != "text/x-user-conf" {
		t.Errorf("first-loaded rule should win: got %q", actual)
	}
	if actual, _ := table.BestMatch("a.ini"); actual != "text/x-ini" {
		t.Errorf("later file should still contribute: got %q", actual)
	}
	if table.Len() != 3 {
		t.Errorf("Len: expected 3, got %d", table.Len())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	table := New()
	_, err := table.LoadFile(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
	var lerr LoadError
	if !errors.As(err, &lerr) {
		t.Errorf("expected LoadError, got %T", err)
	}
}
