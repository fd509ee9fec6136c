// Package roast holds the request type shared by every roast entry point.
package roast

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AdditionalPath is a path from anywhere on the filesystem that is copied
// into the staging tree. Dest is relative to the staging root; empty means
// the staging root itself.
type AdditionalPath struct {
	Source string
	Dest   string
}

// String renders the path in the "src,dest" form accepted on the command line.
func (a AdditionalPath) String() string {
	if a.Dest == "" {
		return a.Source
	}
	return a.Source + "," + a.Dest
}

// Request describes one archive build.
type Request struct {
	// Target is the directory whose content is archived.
	Target string
	// Include lists paths relative to Target copied even when excluded.
	Include []string
	// Exclude lists paths, relative to Target or absolute, left out of the archive.
	Exclude []string
	// Additional lists paths copied wholesale into the staging tree.
	Additional []AdditionalPath
	// PreserveRoot stages content under the basename of Target.
	PreserveRoot bool
	IgnoreHidden bool
	// IgnoreVCS drops entries whose name starts with ".git".
	IgnoreVCS bool
	// RespectGitignore drops paths of the target matched by its .gitignore
	// files.
	RespectGitignore bool
	Reproducible     bool
	// Output is the archive path; its suffix selects the compressor.
	Output string
}

// Default returns a request carrying the command line defaults.
func Default() Request {
	return Request{IgnoreVCS: true}
}

// Validate reports missing mandatory fields.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Target) == "" {
		return errors.New("missing target directory")
	}
	if strings.TrimSpace(r.Output) == "" {
		return errors.New("missing output path")
	}
	return nil
}

// ParseAdditionalPath parses "src" or "src,dest".
func ParseAdditionalPath(s string) (AdditionalPath, error) {
	src, dest, _ := strings.Cut(s, ",")
	src = strings.TrimSpace(src)
	dest = strings.TrimSpace(dest)
	if src == "" {
		return AdditionalPath{}, fmt.Errorf("invalid additional path: %q", s)
	}
	return AdditionalPath{Source: src, Dest: dest}, nil
}

// ParseAdditionalPaths parses every value with ParseAdditionalPath.
func ParseAdditionalPaths(values []string) ([]AdditionalPath, error) {
	out := make([]AdditionalPath, 0, len(values))
	for _, v := range values {
		a, err := ParseAdditionalPath(v)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// ResolveOutput joins outfile onto outdir. An empty outdir means the current
// working directory and an absolute outfile is returned unchanged.
func ResolveOutput(outdir, outfile string) (string, error) {
	if strings.TrimSpace(outfile) == "" {
		return "", errors.New("missing output file name")
	}
	if filepath.IsAbs(outfile) {
		return filepath.Clean(outfile), nil
	}
	if outdir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		outdir = wd
	}
	abs, err := filepath.Abs(filepath.Join(outdir, outfile))
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}
	return abs, nil
}
