// Package buildinfo exposes version metadata for the roast binary. Values
// can be overridden with -ldflags; the cli package values are honoured for
// older build scripts.
package buildinfo

import (
	"runtime/debug"
	"strings"

	"github.com/flarebyte/roast/cli"
)

var (
	// Version defaults to cli.Version, then to the module version, then "dev".
	Version = ""
	// Commit is the VCS commit hash.
	Commit = ""
	// Date is the build time. Falls back to cli.Date.
	Date = ""
	// BuiltBy names the builder.
	BuiltBy = ""
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// ResolvedVersion returns the first non-empty version source.
func ResolvedVersion() string {
	if Version != "" {
		return Version
	}
	if cli.Version != "" {
		return cli.Version
	}
	if bi, ok := readBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return "dev"
}

// Summary returns a single-line version string such as
// "1.2.3 (commit=abcdef0, date=2026-02-09)".
func Summary() string {
	v := ResolvedVersion()
	d := Date
	if d == "" {
		d = cli.Date
	}

	parts := make([]string, 0, 2)
	if Commit != "" {
		c := Commit
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if d != "" {
		parts = append(parts, "date="+d)
	}
	if len(parts) > 0 {
		v += " (" + strings.Join(parts, ", ") + ")"
	}
	return v
}
