package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// pdfMagic is a magic file with one rule: "%PDF-" at offset 0.
const pdfMagic = "MIME-Magic\x00\n[50:application/pdf]\n>0=\x00\x05%PDF-\n"

const testGlobs = "*.txt:text/plain\n*.pdf:application/pdf\n"

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mimeDir := filepath.Join(dir, "mime")
	require.NoError(t, os.MkdirAll(mimeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(mimeDir, "globs"), []byte(testGlobs), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(mimeDir, "magic"), []byte(pdfMagic), 0o644))
	return dir
}

func writeConfig(t *testing.T, cfg interface{}) string {
	t.Helper()
	var raw []byte
	switch x := cfg.(type) {
	case string:
		raw = []byte(x)
	default:
		var err error
		raw, err = json.Marshal(cfg)
		require.NoError(t, err)
	}
	path := filepath.Join(t.TempDir(), "mimed.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}
