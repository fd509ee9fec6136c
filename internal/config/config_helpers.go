package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// compileCUE loads and compiles a CUE file at the given path.
func compileCUE(path string) (cue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("invalid config: %v", err)
	}
	return v, nil
}

func requireStringField(v cue.Value, name string) (string, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return "", fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return "", fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	var s string
	if err := f.Decode(&s); err != nil {
		return "", fmt.Errorf("invalid value for %s: %v", name, err)
	}
	return s, nil
}

func optString(v cue.Value, name string, dst *string, has *bool) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	if err := f.Decode(dst); err != nil {
		return fmt.Errorf("invalid value for %s: %v", name, err)
	}
	*has = true
	return nil
}

func optBool(v cue.Value, name string, dst *bool, has *bool) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.BoolKind {
		return fmt.Errorf("invalid type for field: %s (expected bool)", name)
	}
	if err := f.Decode(dst); err != nil {
		return fmt.Errorf("invalid value for %s: %v", name, err)
	}
	*has = true
	return nil
}

func optStrings(v cue.Value, name string, dst *[]string, has *bool) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.ListKind {
		return fmt.Errorf("invalid type for field: %s (expected list of strings)", name)
	}
	if err := f.Decode(dst); err != nil {
		return fmt.Errorf("invalid value for %s: %v", name, err)
	}
	*has = true
	return nil
}

// parseCUE extracts the request fields of a CUE file.
func parseCUE(path string) (File, error) {
	v, err := compileCUE(path)
	if err != nil {
		return File{}, err
	}
	var f File
	if f.ConfigVersion, err = requireStringField(v, "configVersion"); err != nil {
		return File{}, err
	}
	steps := []error{
		optString(v, "target", &f.Target, &f.HasTarget),
		optStrings(v, "include", &f.Include, &f.HasInclude),
		optStrings(v, "exclude", &f.Exclude, &f.HasExclude),
		optStrings(v, "additional", &f.Additional, &f.HasAdditional),
		optString(v, "outfile", &f.Outfile, &f.HasOutfile),
		optString(v, "outdir", &f.Outdir, &f.HasOutdir),
		optBool(v, "preserveRoot", &f.PreserveRoot, &f.HasPreserveRoot),
		optBool(v, "reproducible", &f.Reproducible, &f.HasReproducible),
		optBool(v, "ignoreGit", &f.IgnoreGit, &f.HasIgnoreGit),
		optBool(v, "ignoreHidden", &f.IgnoreHidden, &f.HasIgnoreHidden),
		optBool(v, "respectGitignore", &f.RespectGitignore, &f.HasRespectGitignore),
	}
	for _, err := range steps {
		if err != nil {
			return File{}, err
		}
	}
	return f, nil
}
