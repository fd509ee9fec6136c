// Package detect classifies existing archives by their magic bytes.
package detect

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/flarebyte/roast/internal/compress"
)

// ErrUnsupportedFormat is matched by every UnsupportedFormatError.
var ErrUnsupportedFormat = errors.New("unsupported format")

// UnsupportedFormatError reports content that is not a known archive. Ext
// is the file extension without the dot, or "unknown format".
type UnsupportedFormatError struct {
	Ext  string
	MIME string
}

func (e *UnsupportedFormatError) Error() string {
	if e.MIME == "" {
		return "unsupported format: " + e.Ext
	}
	return fmt.Sprintf("unsupported format: %s (%s)", e.Ext, e.MIME)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

var known = []struct {
	mime   string
	format compress.Format
}{
	{"application/gzip", compress.Gzip},
	{"application/x-xz", compress.Xz},
	{"application/zstd", compress.Zstd},
	{"application/x-bzip2", compress.Bzip2},
	{"application/x-tar", compress.Tar},
}

// File sniffs the content of path.
func File(path string) (compress.Format, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to detect format of %s: %w", path, err)
	}
	return classify(m, path)
}

// Reader sniffs the head of r. name is only used for error messages.
func Reader(r io.Reader, name string) (compress.Format, error) {
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to detect format of %s: %w", name, err)
	}
	return classify(m, name)
}

func classify(m *mimetype.MIME, name string) (compress.Format, error) {
	for _, k := range known {
		if m.Is(k.mime) {
			return k.format, nil
		}
	}
	return 0, &UnsupportedFormatError{Ext: extension(name), MIME: m.String()}
}

func extension(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "unknown format"
	}
	return ext
}
