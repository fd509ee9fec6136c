package compress

import (
	"fmt"
	"io"
	"runtime"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

const (
	// zstdLevel is the zstd command line level used for archives.
	zstdLevel = 19
	// xzDictCap matches the dictionary size of xz preset 6.
	xzDictCap = 8 << 20
)

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewWriter wraps w with the encoder of f. Closing the result flushes the
// encoder but leaves w open.
func NewWriter(w io.Writer, f Format) (io.WriteCloser, error) {
	switch f {
	case Tar:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	case Xz:
		cfg := xz.WriterConfig{DictCap: xzDictCap, CheckSum: xz.CRC32}
		return cfg.NewWriter(w)
	case Zstd:
		return zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(zstdLevel)),
			zstd.WithEncoderCRC(true),
			zstd.WithEncoderConcurrency(runtime.GOMAXPROCS(0)),
		)
	case Bzip2:
		return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	default:
		return nil, fmt.Errorf("no encoder for %s", f)
	}
}

// NewReader wraps r with the decoder of f.
func NewReader(r io.Reader, f Format) (io.ReadCloser, error) {
	switch f {
	case Tar:
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Xz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case Bzip2:
		return bzip2.NewReader(r, nil)
	default:
		return nil, fmt.Errorf("no decoder for %s", f)
	}
}
