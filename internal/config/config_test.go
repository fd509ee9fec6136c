package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarebyte/roast/internal/roast"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const cueRequest = `{
  configVersion: "1"
  target:        "src"
  include: ["vendor/keep.txt"]
  exclude: ["vendor", "build"]
  additional: ["../LICENSE,docs"]
  outfile:      "pkg-1.0.tar.zst"
  outdir:       "dist"
  preserveRoot: true
  reproducible: true
  ignoreGit:    false
}
`

const yamlRequest = `configVersion: "1"
target: src
include: [vendor/keep.txt]
exclude: [vendor, build]
additional: ["../LICENSE,docs"]
outfile: pkg-1.0.tar.zst
outdir: dist
preserveRoot: true
reproducible: true
ignoreGit: false
`

func TestLoadAndApply(t *testing.T) {
	for name, content := range map[string]string{"roast.cue": cueRequest, "roast.yaml": yamlRequest} {
		t.Run(name, func(t *testing.T) {
			f, err := Load(writeConfig(t, name, content))
			require.NoError(t, err)
			assert.Equal(t, "1", f.ConfigVersion)
			assert.Equal(t, "pkg-1.0.tar.zst", f.Outfile)
			assert.True(t, f.HasOutdir)
			assert.False(t, f.HasIgnoreHidden)

			req := roast.Default()
			req.IgnoreHidden = true
			require.NoError(t, f.Apply(&req))
			assert.Equal(t, "src", req.Target)
			assert.Equal(t, []string{"vendor/keep.txt"}, req.Include)
			assert.Equal(t, []string{"vendor", "build"}, req.Exclude)
			assert.Equal(t, []roast.AdditionalPath{{Source: "../LICENSE", Dest: "docs"}}, req.Additional)
			assert.True(t, req.PreserveRoot)
			assert.True(t, req.Reproducible)
			assert.False(t, req.IgnoreVCS)
			assert.True(t, req.IgnoreHidden, "absent fields keep their value")
		})
	}
}

func TestLoadMinimal(t *testing.T) {
	f, err := Load(writeConfig(t, "min.yml", "configVersion: \"1\"\n"))
	require.NoError(t, err)
	req := roast.Default()
	require.NoError(t, f.Apply(&req))
	assert.Equal(t, roast.Default(), req)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"x.toml", "configVersion = 1", "unsupported config format"},
		{"no_version.cue", "{ target: \"src\" }", "missing required field: configVersion"},
		{"no_version.yaml", "target: src\n", "missing required field: configVersion"},
		{"bad_type.cue", "{ configVersion: \"1\", reproducible: \"yes\" }", "invalid type for field: reproducible (expected bool)"},
		{"bad_list.cue", "{ configVersion: \"1\", exclude: \"build\" }", "invalid type for field: exclude"},
		{"unknown.yaml", "configVersion: \"1\"\nfollow: true\n", "invalid config"},
		{"broken.cue", "{ configVersion: ", "invalid config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.name, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestApplyRejectsBadAdditional(t *testing.T) {
	f := File{Additional: []string{",docs"}, HasAdditional: true}
	req := roast.Default()
	assert.Error(t, f.Apply(&req))
}
