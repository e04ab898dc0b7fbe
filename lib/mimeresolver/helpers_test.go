package mimeresolver

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type magicSection struct {
	priority int
	mimeType string
	offset   int
	value    string
}

func magicBytes(sections ...magicSection) []byte {
	var buf bytes.Buffer
	buf.WriteString("MIME-Magic\x00\n")
	for _, s := range sections {
		fmt.Fprintf(&buf, "[%d:%s]\n>%d=", s.priority, s.mimeType, s.offset)
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(len(s.value)))
		buf.Write(tmp[:])
		buf.WriteString(s.value)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func writeRules(t *testing.T, dir string, globs string, magic []byte) {
	t.Helper()
	mimeDir := filepath.Join(dir, "mime")
	require.NoError(t, os.MkdirAll(mimeDir, 0o755))
	if globs != "" {
		require.NoError(t, os.WriteFile(filepath.Join(mimeDir, "globs"), []byte(globs), 0o644))
	}
	if magic != nil {
		require.NoError(t, os.WriteFile(filepath.Join(mimeDir, "magic"), magic, 0o644))
	}
}

func writeData(t *testing.T, path string, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

// fakeClock is a NowFn that only moves when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

const testGlobs = `# test rules
*.txt:text/plain
50:*.pdf:application/pdf
README:text/x-readme
80:*.tar.gz:application/x-compressed-tar
*.gz:application/gzip
`

func testMagic() []byte {
	return magicBytes(
		magicSection{80, "application/pdf", 0, "%PDF-"},
		magicSection{50, "image/png", 0, "\x89PNG"},
		magicSection{50, "text/x-script", 0, "#!"},
	)
}
