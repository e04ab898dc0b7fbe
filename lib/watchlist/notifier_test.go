package watchlist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	dirC := filepath.Join(t.TempDir(), "absent")
	writeFile(t, filepath.Join(dirA, "mime", "globs"), "*.txt:text/plain\n")

	list := Build([]string{dirA, dirB, dirC})
	n, err := NewNotifier(list, zerolog.Nop())
	require.NoError(t, err)
	defer n.Close()

	assert.Equal(t, 2, n.Watched())
	assert.False(t, n.Dirty())

	// Unrelated files are ignored.
	writeFile(t, filepath.Join(dirA, "mime", "README"), "hello\n")
	writeFile(t, filepath.Join(dirB, "unrelated"), "hello\n")
	time.Sleep(100 * time.Millisecond)
	assert.False(t, n.Dirty())

	writeFile(t, filepath.Join(dirA, "mime", "magic"), "MIME-Magic\x00\n")
	require.Eventually(t, n.Dirty, 5*time.Second, 10*time.Millisecond)

	n.Reset()
	assert.False(t, n.Dirty())

	require.NoError(t, os.Mkdir(filepath.Join(dirB, "mime"), 0o755))
	require.Eventually(t, n.Dirty, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
}
