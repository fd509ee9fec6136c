package options

import (
	"github.com/spf13/cobra"

	"github.com/flarebyte/roast/internal/roast"
)

// Filters are the request flags shared by archive, recompress and scm.
type Filters struct {
	Include        []string
	Exclude        []string
	Additional     []string
	PreserveRoot   bool
	Reproducible   bool
	IgnoreGit      bool
	IgnoreHidden   bool
	Gitignore      bool
	FollowSymlinks bool
}

// Bind registers the filter flags on cmd. preserveRoot controls whether
// --preserve-root is offered.
func (f *Filters) Bind(cmd *cobra.Command, preserveRoot bool) {
	fl := cmd.Flags()
	fl.StringArrayVarP(&f.Include, "include", "i", nil, "Path inside the target to add even when excluded (repeatable)")
	fl.StringArrayVarP(&f.Exclude, "exclude", "E", nil, "Path inside the target to leave out (repeatable)")
	fl.StringArrayVarP(&f.Additional, "additional-paths", "A", nil, "Extra file or directory to add, optionally as SRC,DEST (repeatable)")
	if preserveRoot {
		fl.BoolVarP(&f.PreserveRoot, "preserve-root", "p", false, "Keep the target directory name as the top level of the archive")
	}
	fl.BoolVarP(&f.Reproducible, "reproducible", "r", false, "Zero timestamps and ownership for byte-identical output")
	fl.BoolVarP(&f.IgnoreGit, "ignore-git", "g", true, "Leave out .git* entries")
	fl.BoolVarP(&f.IgnoreHidden, "ignore-hidden", "I", false, "Leave out dotfiles")
	fl.BoolVar(&f.Gitignore, "gitignore", false, "Leave out paths matched by the target's .gitignore files")
	fl.BoolVar(&f.FollowSymlinks, "follow-symlinks", false, "Copy the content behind symlinks instead of the links")
}

// Apply copies the flags set on the command line onto req. Flags left at
// their default keep whatever req already holds.
func (f *Filters) Apply(cmd *cobra.Command, req *roast.Request) error {
	fl := cmd.Flags()
	if fl.Changed("include") {
		req.Include = f.Include
	}
	if fl.Changed("exclude") {
		req.Exclude = f.Exclude
	}
	if fl.Changed("additional-paths") {
		adds, err := roast.ParseAdditionalPaths(f.Additional)
		if err != nil {
			return Usage(err)
		}
		req.Additional = adds
	}
	if fl.Changed("preserve-root") {
		req.PreserveRoot = f.PreserveRoot
	}
	if fl.Changed("reproducible") {
		req.Reproducible = f.Reproducible
	}
	if fl.Changed("ignore-git") {
		req.IgnoreVCS = f.IgnoreGit
	}
	if fl.Changed("ignore-hidden") {
		req.IgnoreHidden = f.IgnoreHidden
	}
	if fl.Changed("gitignore") {
		req.RespectGitignore = f.Gitignore
	}
	return nil
}
