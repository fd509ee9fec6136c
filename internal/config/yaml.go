package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	ConfigVersion    *string  `yaml:"configVersion"`
	Target           *string  `yaml:"target"`
	Include          []string `yaml:"include"`
	Exclude          []string `yaml:"exclude"`
	Additional       []string `yaml:"additional"`
	Outfile          *string  `yaml:"outfile"`
	Outdir           *string  `yaml:"outdir"`
	PreserveRoot     *bool    `yaml:"preserveRoot"`
	Reproducible     *bool    `yaml:"reproducible"`
	IgnoreGit        *bool    `yaml:"ignoreGit"`
	IgnoreHidden     *bool    `yaml:"ignoreHidden"`
	RespectGitignore *bool    `yaml:"respectGitignore"`
}

// parseYAML extracts the request fields of a YAML file. Unknown keys are
// rejected.
func parseYAML(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read config: %w", err)
	}
	var y yamlFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&y); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("invalid config: %v", err)
	}
	if y.ConfigVersion == nil {
		return File{}, errors.New("missing required field: configVersion")
	}

	f := File{
		ConfigVersion: *y.ConfigVersion,
		Include:       y.Include,
		Exclude:       y.Exclude,
		Additional:    y.Additional,
		HasInclude:    y.Include != nil,
		HasExclude:    y.Exclude != nil,
		HasAdditional: y.Additional != nil,
	}
	setString(y.Target, &f.Target, &f.HasTarget)
	setString(y.Outfile, &f.Outfile, &f.HasOutfile)
	setString(y.Outdir, &f.Outdir, &f.HasOutdir)
	setBool(y.PreserveRoot, &f.PreserveRoot, &f.HasPreserveRoot)
	setBool(y.Reproducible, &f.Reproducible, &f.HasReproducible)
	setBool(y.IgnoreGit, &f.IgnoreGit, &f.HasIgnoreGit)
	setBool(y.IgnoreHidden, &f.IgnoreHidden, &f.HasIgnoreHidden)
	setBool(y.RespectGitignore, &f.RespectGitignore, &f.HasRespectGitignore)
	return f, nil
}

func setString(src *string, dst *string, has *bool) {
	if src != nil {
		*dst, *has = *src, true
	}
}

func setBool(src *bool, dst *bool, has *bool) {
	if src != nil {
		*dst, *has = *src, true
	}
}
