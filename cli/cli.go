package cli

// Version and Date are set at build time with ldflags, e.g.:
//
//	-ldflags "-X 'github.com/flarebyte/roast/cli.Version=1.2.3' -X 'github.com/flarebyte/roast/cli.Date=2026-02-09'"
var (
	Version string
	Date    string
)
