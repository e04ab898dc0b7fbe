package mimemagic

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBytes_Basic(t *testing.T) {
	raw := newMagicBuilder().
		section(80, "application/pdf").
		line([]byte("%PDF-"), lineOpts{}).
		section(50, "text/x-script").
		line([]byte("#!"), lineOpts{}).
		bytes()

	m := New(Conjunctive)
	stats, err := m.LoadBytes(raw, "magic")
	if err != nil {
		t.Fatalf("LoadBytes: unexpected error: %v", err)
	}
	if stats.Added != 2 {
		t.Errorf("Added: expected 2, got %d", stats.Added)
	}
	if len(stats.Skipped) != 0 {
		t.Errorf("Skipped: expected none, got %v", stats.Skipped)
	}

	if actual, _ := m.Lookup([]byte("%PDF-1.7")); actual != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", actual)
	}
	if actual, _ := m.Lookup([]byte("#!/bin/sh")); actual != "text/x-script" {
		t.Errorf("expected text/x-script, got %q", actual)
	}
	if actual, ok := m.Lookup([]byte("hello")); ok {
		t.Errorf("expected no match, got %q", actual)
	}
}

func TestLoadBytes_BadHeader(t *testing.T) {
	type testRow struct {
		name  string
		input []byte
	}

	testData := []testRow{
		{"empty", nil},
		{"wrong", []byte("NOT-Magic\x00\n[50:a/b]\n>0=\x00\x01x\n")},
		{"short", []byte("MIME-Mag")},
	}

	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			m := New(Conjunctive)
			stats, err := m.LoadBytes(row.input, "magic")
			if !errors.Is(err, ErrBadHeader) {
				t.Errorf("expected ErrBadHeader, got %v", err)
			}
			var loadErr LoadError
			if !errors.As(err, &loadErr) || loadErr.Path != "magic" {
				t.Errorf("expected LoadError for %q, got %#v", "magic", err)
			}
			if stats.Added != 0 || m.Len() != 0 {
				t.Errorf("expected nothing added, got %d/%d", stats.Added, m.Len())
			}
		})
	}
}

func TestLoadBytes_SkipsBadSection(t *testing.T) {
	type testRow struct {
		name string
		bad  func(b *magicBuilder)
		err  error
	}

	testData := []testRow{
		{"priority", func(b *magicBuilder) {
			b.section(500, "image/x-bad").line([]byte("BAD"), lineOpts{})
		}, ErrBadPriority},
		{"type", func(b *magicBuilder) {
			b.raw("[50:nonsense]\n").line([]byte("BAD"), lineOpts{})
		}, ErrBadMimeType},
		{"header", func(b *magicBuilder) {
			b.raw("[50image/x-bad]\n").line([]byte("BAD"), lineOpts{})
		}, ErrBadSection},
		{"empty", func(b *magicBuilder) {
			b.section(50, "image/x-bad")
		}, ErrEmptySection},
		{"indent", func(b *magicBuilder) {
			b.section(50, "image/x-bad").line([]byte("BAD"), lineOpts{indent: 1})
		}, ErrBadIndent},
		{"word", func(b *magicBuilder) {
			b.section(50, "image/x-bad").line([]byte("BAD"), lineOpts{wordSize: 3})
		}, ErrBadWordSize},
		{"junk", func(b *magicBuilder) {
			b.section(50, "image/x-bad").raw(">0=\x00\x03BAD?\n")
		}, ErrUnexpectedByte},
	}

	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			b := newMagicBuilder().
				section(60, "image/x-good").
				line([]byte("GOOD"), lineOpts{})
			row.bad(b)
			b.section(40, "image/x-after").line([]byte("AFTER"), lineOpts{})

			m := New(Conjunctive)
			stats, err := m.LoadBytes(b.bytes(), "magic")
			if err != nil {
				t.Fatalf("LoadBytes: unexpected error: %v", err)
			}
			if stats.Added != 2 {
				t.Errorf("Added: expected 2, got %d", stats.Added)
			}
			if len(stats.Skipped) != 1 {
				t.Fatalf("Skipped: expected 1, got %v", stats.Skipped)
			}
			if !errors.Is(stats.Skipped[0], row.err) {
				t.Errorf("Skipped[0]: expected %v, got %v", row.err, stats.Skipped[0])
			}
			if actual, _ := m.Lookup([]byte("AFTER")); actual != "image/x-after" {
				t.Errorf("section after the bad one: expected image/x-after, got %q", actual)
			}
			if actual, ok := m.Lookup([]byte("BAD")); ok {
				t.Errorf("bad section: expected no match, got %q", actual)
			}
		})
	}
}

func TestLoadBytes_Truncated(t *testing.T) {
	good := newMagicBuilder().
		section(60, "image/x-good").
		line([]byte("GOOD"), lineOpts{}).
		bytes()
	full := newMagicBuilder().
		section(60, "image/x-good").
		line([]byte("GOOD"), lineOpts{}).
		section(50, "image/x-cut").
		line([]byte("CUTOFF"), lineOpts{}).
		bytes()

	for n := len(good) + 1; n < len(full); n++ {
		m := New(Conjunctive)
		stats, err := m.LoadBytes(full[:n], "magic")
		if err != nil {
			t.Fatalf("%d bytes: unexpected error: %v", n, err)
		}
		if stats.Added != 1 {
			t.Errorf("%d bytes: Added: expected 1, got %d", n, stats.Added)
		}
		if len(stats.Skipped) != 1 {
			t.Errorf("%d bytes: Skipped: expected 1, got %d", n, len(stats.Skipped))
		}
		if actual, _ := m.Lookup([]byte("GOOD")); actual != "image/x-good" {
			t.Errorf("%d bytes: expected image/x-good, got %q", n, actual)
		}
	}
}

func TestLoadBytes_Nesting(t *testing.T) {
	raw := newMagicBuilder().
		section(50, "application/x-nested").
		line([]byte("AB"), lineOpts{}).
		line([]byte("CD"), lineOpts{indent: 1}).
		raw(">>>0=\x00\x02EF\n").
		bytes()

	m := New(Conjunctive)
	if _, err := m.LoadBytes(raw, "magic"); err != nil {
		t.Fatalf("LoadBytes: unexpected error: %v", err)
	}

	match, ok := m.LookupMatch([]byte("ABCDEF"))
	if !ok || match.Type != "application/x-nested" {
		t.Fatalf("expected application/x-nested, got (%q, %v)", match.Type, ok)
	}
	if match.Specificity != 3 {
		t.Errorf("Specificity: expected 3, got %d", match.Specificity)
	}
	if _, ok := m.Lookup([]byte("ABCDxx")); ok {
		t.Errorf("missing second child: expected no match")
	}
}

func TestLoadBytes_Options(t *testing.T) {
	raw := newMagicBuilder().
		section(70, "application/x-masked").
		line([]byte{0x05}, lineOpts{offset: 1, mask: []byte{0x0f}}).
		section(60, "application/x-window").
		line([]byte("KEY"), lineOpts{offset: 2, end: 4, rng: 2}).
		bytes()

	m := New(Freedesktop)
	stats, err := m.LoadBytes(raw, "magic")
	if err != nil {
		t.Fatalf("LoadBytes: unexpected error: %v", err)
	}
	if stats.Added != 2 {
		t.Fatalf("Added: expected 2, got %d (skipped %v)", stats.Added, stats.Skipped)
	}

	if actual, _ := m.Lookup([]byte{0x00, 0x15}); actual != "application/x-masked" {
		t.Errorf("masked: expected application/x-masked, got %q", actual)
	}

	// start window [2,4] plus range 2 covers positions 2..5.
	type testRow struct {
		input  string
		expect bool
	}
	for _, row := range []testRow{
		{"..KEY", true},
		{".....KEY", true},
		{"......KEY", false},
		{".KEY", false},
	} {
		actual, _ := m.Lookup([]byte(row.input))
		if (actual == "application/x-window") != row.expect {
			t.Errorf("%q: expected match=%v, got %q", row.input, row.expect, actual)
		}
	}

	if actual := m.RequiredBufferSize(); actual != 8 {
		t.Errorf("RequiredBufferSize: expected 8, got %d", actual)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "magic")
	raw := newMagicBuilder().
		section(50, "image/png").
		line([]byte("\x89PNG"), lineOpts{}).
		bytes()
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m := New(Conjunctive)
	stats, err := m.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: unexpected error: %v", err)
	}
	if stats.Path != path || stats.Added != 1 {
		t.Errorf("expected {%q 1}, got {%q %d}", path, stats.Path, stats.Added)
	}

	_, err = m.LoadFile(filepath.Join(dir, "missing"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: expected os.ErrNotExist, got %v", err)
	}

	stats, err = m.Load(bytes.NewReader(raw), "reader")
	if err != nil || stats.Added != 1 {
		t.Errorf("Load: expected 1 added, got %d (err %v)", stats.Added, err)
	}
	if m.Len() != 2 {
		t.Errorf("Len: expected 2 after loading twice, got %d", m.Len())
	}
}

func TestLoadBytes_OffsetOutOfRange(t *testing.T) {
	type testRow struct {
		name    string
		section string
		err     error
	}

	testData := []testRow{
		{"maxint", "[50:application/x-evil]\n>9223372036854775807=\x00\x01A\n", ErrOffsetOutOfRange},
		{"huge", "[50:application/x-evil]\n>1099511627776=\x00\x01A\n", ErrOffsetOutOfRange},
		{"overflows-int", "[50:application/x-evil]\n>99999999999999999999=\x00\x01A\n", ErrBadOffset},
		{"range-end", "[50:application/x-evil]\n>0:9223372036854775807=\x00\x01A\n", ErrOffsetOutOfRange},
		{"range-plus", "[50:application/x-evil]\n>0=\x00\x01A+9223372036854775807\n", ErrOffsetOutOfRange},
		{"child", "[50:application/x-evil]\n>0=\x00\x01h\n1>9223372036854775806=\x00\x01A\n", ErrOffsetOutOfRange},
		{"child-cumulative", "[50:application/x-evil]\n>1048000=\x00\x01h\n1>1000=\x00\x01A\n", ErrOffsetOutOfRange},
	}

	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			raw := []byte(Header + row.section + "[40:image/x-after]\n>0=\x00\x05AFTER\n")

			for _, semantics := range []Semantics{Conjunctive, Freedesktop} {
				m := New(semantics)
				stats, err := m.LoadBytes(raw, "magic")
				if err != nil {
					t.Fatalf("LoadBytes: unexpected error: %v", err)
				}
				if stats.Added != 1 {
					t.Errorf("%v: Added: expected 1, got %d", semantics, stats.Added)
				}
				if len(stats.Skipped) != 1 {
					t.Fatalf("%v: Skipped: expected 1, got %v", semantics, stats.Skipped)
				}
				if !errors.Is(stats.Skipped[0], row.err) {
					t.Errorf("%v: Skipped[0]: expected %v, got %v", semantics, row.err, stats.Skipped[0])
				}
				if actual := m.RequiredBufferSize(); actual != 5 {
					t.Errorf("%v: RequiredBufferSize: expected 5, got %d", semantics, actual)
				}
				if actual, ok := m.Lookup([]byte("hello")); ok {
					t.Errorf("%v: expected no match, got %q", semantics, actual)
				}
				if actual, _ := m.Lookup([]byte("AFTER")); actual != "image/x-after" {
					t.Errorf("%v: expected image/x-after, got %q", semantics, actual)
				}
			}
		})
	}
}
