// Package config loads roast request files written in CUE or YAML.
package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/flarebyte/roast/internal/roast"
)

// File holds the fields of a request file. Has* flags record which optional
// fields were present so that defaults are only overridden on purpose.
type File struct {
	ConfigVersion string

	Target     string
	Include    []string
	Exclude    []string
	Additional []string
	Outfile    string
	Outdir     string

	PreserveRoot     bool
	Reproducible     bool
	IgnoreGit        bool
	IgnoreHidden     bool
	RespectGitignore bool

	HasTarget           bool
	HasInclude          bool
	HasExclude          bool
	HasAdditional       bool
	HasOutfile          bool
	HasOutdir           bool
	HasPreserveRoot     bool
	HasReproducible     bool
	HasIgnoreGit        bool
	HasIgnoreHidden     bool
	HasRespectGitignore bool
}

// Load reads a .cue, .yaml or .yml request file.
func Load(path string) (File, error) {
	var (
		f   File
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		f, err = parseCUE(path)
	case ".yaml", ".yml":
		f, err = parseYAML(path)
	default:
		return File{}, errors.New("unsupported config format: expected .cue, .yaml or .yml")
	}
	if err != nil {
		return File{}, err
	}
	if err := checkConfigVersion(f.ConfigVersion); err != nil {
		return File{}, err
	}
	return f, nil
}

// Apply copies the fields present in f onto req. Relative target, include
// and additional source paths stay relative; they are resolved later against
// the working directory or the target.
func (f File) Apply(req *roast.Request) error {
	if f.HasTarget {
		req.Target = f.Target
	}
	if f.HasInclude {
		req.Include = append([]string(nil), f.Include...)
	}
	if f.HasExclude {
		req.Exclude = append([]string(nil), f.Exclude...)
	}
	if f.HasAdditional {
		adds, err := roast.ParseAdditionalPaths(f.Additional)
		if err != nil {
			return err
		}
		req.Additional = adds
	}
	if f.HasPreserveRoot {
		req.PreserveRoot = f.PreserveRoot
	}
	if f.HasReproducible {
		req.Reproducible = f.Reproducible
	}
	if f.HasIgnoreGit {
		req.IgnoreVCS = f.IgnoreGit
	}
	if f.HasIgnoreHidden {
		req.IgnoreHidden = f.IgnoreHidden
	}
	if f.HasRespectGitignore {
		req.RespectGitignore = f.RespectGitignore
	}
	return nil
}
