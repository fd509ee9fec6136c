package archive

import (
	"archive/tar"
	"fmt"
	"io/fs"
	"time"
)

// epoch is the modification time of every reproducible entry.
var epoch = time.Unix(0, 0)

// ReproducibleMode derives the stored permission bits from the entry type
// and its execute bits only. Symlinks always carry execute bits and so are
// stored as 0755.
func ReproducibleMode(t EntryType, mode fs.FileMode) int64 {
	switch {
	case t == Dir, t == Symlink, mode&0o111 != 0:
		return 0o755
	default:
		return 0o644
	}
}

// Header builds the tar header of e. Reproducible headers carry no time,
// owner or host specific data.
func Header(e Entry, reproducible bool) (*tar.Header, error) {
	if reproducible {
		return reproducibleHeader(e), nil
	}
	if e.info == nil {
		return nil, fmt.Errorf("missing file info for %s", e.Path)
	}
	hdr, err := tar.FileInfoHeader(e.info, e.Linkname)
	if err != nil {
		return nil, fmt.Errorf("failed to build header for %s: %w", e.Path, err)
	}
	hdr.Name = entryName(e)
	return hdr, nil
}

func reproducibleHeader(e Entry) *tar.Header {
	hdr := &tar.Header{
		Name:    entryName(e),
		Mode:    ReproducibleMode(e.Type, e.Mode),
		ModTime: epoch,
		Format:  tar.FormatGNU,
	}
	switch e.Type {
	case Dir:
		hdr.Typeflag = tar.TypeDir
	case Symlink:
		hdr.Typeflag = tar.TypeSymlink
		hdr.Linkname = e.Linkname
	default:
		hdr.Typeflag = tar.TypeReg
		hdr.Size = e.Size
	}
	return hdr
}

func entryName(e Entry) string {
	if e.Type == Dir {
		return e.Path + "/"
	}
	return e.Path
}
