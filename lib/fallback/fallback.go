// Package fallback wraps third-party content sniffers so that a resolver can
// consult them after its own magic rules find nothing.
//
// Two sniffers are available:
//
//	github.com/gabriel-vasile/mimetype  (Mimetype)
//	github.com/h2non/filetype           (Filetype)
package fallback

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/chronos-tachyon/xdgmime/internal/constants"
)

// Detector guesses a MIME type from leading file content.  ok is false when
// the detector has no opinion.  Implementations must be safe for concurrent
// use and must not retain buf.
type Detector interface {
	Detect(buf []byte) (mimeType string, ok bool)
}

// Names lists the values accepted by ByName.
var Names = []string{"none", "mimetype", "filetype"}

// ByName returns the Detector called name, or nil for "none" and "".
func ByName(name string) (Detector, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return nil, nil
	case "mimetype":
		return Mimetype{}, nil
	case "filetype":
		return Filetype{}, nil
	default:
		return nil, fmt.Errorf("unknown fallback detector %q; expected one of %q", name, Names)
	}
}

// Mimetype detects with github.com/gabriel-vasile/mimetype.  Its catch-all
// answer, application/octet-stream, counts as no opinion.
type Mimetype struct{}

// Detect fulfills Detector.
func (Mimetype) Detect(buf []byte) (string, bool) {
	if len(buf) == 0 {
		return "", false
	}
	m := mimetype.Detect(buf)
	if m == nil {
		return "", false
	}
	mimeType := stripParams(m.String())
	if mimeType == "" || mimeType == constants.TypeUnknown {
		return "", false
	}
	return mimeType, true
}

// Filetype detects with github.com/h2non/filetype, which only knows binary
// formats.
type Filetype struct{}

// Detect fulfills Detector.
func (Filetype) Detect(buf []byte) (string, bool) {
	if len(buf) == 0 {
		return "", false
	}
	kind, err := filetype.Match(buf)
	if err != nil || kind == types.Unknown || kind.MIME.Value == "" {
		return "", false
	}
	return kind.MIME.Value, true
}

func stripParams(str string) string {
	if i := strings.IndexByte(str, ';'); i >= 0 {
		str = str[:i]
	}
	return strings.TrimSpace(str)
}

var (
	_ Detector = Mimetype{}
	_ Detector = Filetype{}
)
