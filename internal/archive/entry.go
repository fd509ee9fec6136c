package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// EntryType is the kind of an archive entry.
type EntryType int

const (
	File EntryType = iota
	Symlink
	Dir
)

func (t EntryType) String() string {
	switch t {
	case File:
		return "file"
	case Symlink:
		return "symlink"
	case Dir:
		return "dir"
	default:
		return fmt.Sprintf("EntryType(%d)", int(t))
	}
}

// Entry is one record of the archive stream.
type Entry struct {
	// Path is slash separated and relative to the archived root.
	Path     string
	Type     EntryType
	Mode     fs.FileMode
	Size     int64
	Linkname string

	abs  string
	info fs.FileInfo
}

// Collect walks root and returns its regular files, symlinks and empty
// directories sorted by path. Directories holding entries are implied by
// the paths below them and are not listed.
func Collect(root string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk failed at %s: %w", p, err)
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", p, err)
		}
		if rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info for %s: %w", p, err)
		}
		e := Entry{Path: filepath.ToSlash(rel), Mode: info.Mode(), abs: p, info: info}
		switch {
		case d.IsDir():
			empty, err := isEmptyDir(p)
			if err != nil {
				return err
			}
			if !empty {
				return nil
			}
			e.Type = Dir
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(p)
			if err != nil {
				return fmt.Errorf("failed to read link %s: %w", p, err)
			}
			e.Type = Symlink
			e.Linkname = link
		case info.Mode().IsRegular():
			e.Type = File
			e.Size = info.Size()
		default:
			return nil
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect entries from %s: %w", root, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func isEmptyDir(p string) (bool, error) {
	f, err := os.Open(p)
	if err != nil {
		return false, fmt.Errorf("failed to open directory %s: %w", p, err)
	}
	defer f.Close()
	names, err := f.Readdirnames(1)
	if len(names) > 0 {
		return false, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read directory %s: %w", p, err)
	}
	return true, nil
}
