// Package compress maps archive file names to compression codecs.
package compress

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a closed set of supported archive encodings.
type Format int

const (
	Tar Format = iota + 1
	Gzip
	Xz
	Zstd
	Bzip2
)

// ErrUnsupportedFileType is matched by every UnsupportedFileTypeError.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// UnsupportedFileTypeError reports an output path whose suffix selects no codec.
type UnsupportedFileTypeError struct {
	Path string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s (expected .tar, .tar.gz, .tar.xz, .tar.zst, .tar.zstd, .tar.bz or .tar.bz2)", filepath.Base(e.Path))
}

func (e *UnsupportedFileTypeError) Is(target error) bool {
	return target == ErrUnsupportedFileType
}

var suffixes = []struct {
	suffix string
	format Format
}{
	{".tar.gz", Gzip},
	{".tar.xz", Xz},
	{".tar.zst", Zstd},
	{".tar.zstd", Zstd},
	{".tar.bz", Bzip2},
	{".tar.bz2", Bzip2},
	{".tar", Tar},
}

// FormatFromPath selects the format from the suffix of path.
func FormatFromPath(path string) (Format, error) {
	for _, s := range suffixes {
		if strings.HasSuffix(path, s.suffix) {
			return s.format, nil
		}
	}
	return 0, &UnsupportedFileTypeError{Path: path}
}

// ParseFormat parses a codec name as accepted on the command line.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tar", "none":
		return Tar, nil
	case "gz", "gzip":
		return Gzip, nil
	case "xz":
		return Xz, nil
	case "zst", "zstd":
		return Zstd, nil
	case "bz", "bz2", "bzip2":
		return Bzip2, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (expected tar, gz, xz, zst or bz2)", name)
	}
}

// Names lists the canonical codec names.
func Names() []string {
	return []string{"tar", "gz", "xz", "zst", "bz2"}
}

// String returns the canonical codec name.
func (f Format) String() string {
	switch f {
	case Tar:
		return "tar"
	case Gzip:
		return "gz"
	case Xz:
		return "xz"
	case Zstd:
		return "zst"
	case Bzip2:
		return "bz2"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the file suffix written for the format.
func (f Format) Extension() string {
	if f == Tar {
		return ".tar"
	}
	return ".tar." + f.String()
}
