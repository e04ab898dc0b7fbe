package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestDetectors(t *testing.T) {
	type testRow struct {
		name     string
		detector Detector
	}

	testData := []testRow{
		{"mimetype", Mimetype{}},
		{"filetype", Filetype{}},
	}

	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			actual, ok := row.detector.Detect(pngHeader)
			assert.True(t, ok)
			assert.Equal(t, "image/png", actual)

			_, ok = row.detector.Detect(nil)
			assert.False(t, ok)
		})
	}
}

func TestMimetype_StripsParams(t *testing.T) {
	actual, ok := Mimetype{}.Detect([]byte("plain old text\n"))
	require.True(t, ok)
	assert.Equal(t, "text/plain", actual)
}

func TestFiletype_NoOpinion(t *testing.T) {
	_, ok := Filetype{}.Detect([]byte("plain old text\n"))
	assert.False(t, ok)
}

func TestByName(t *testing.T) {
	type testRow struct {
		name   string
		expect Detector
		err    bool
	}

	testData := []testRow{
		{"", nil, false},
		{"none", nil, false},
		{"MimeType", Mimetype{}, false},
		{"filetype", Filetype{}, false},
		{"magic", nil, true},
	}

	for _, row := range testData {
		actual, err := ByName(row.name)
		if row.err {
			assert.Error(t, err, row.name)
			continue
		}
		require.NoError(t, err, row.name)
		assert.Equal(t, row.expect, actual, row.name)
	}
}
