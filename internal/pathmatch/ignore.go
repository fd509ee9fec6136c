// Package pathmatch decides which paths of a tree take part in an archive.
package pathmatch

import "strings"

// VCSPrefix is the file name prefix of version control metadata.
const VCSPrefix = ".git"

// IsIgnored reports whether an entry named name is dropped by the hidden and
// VCS policies. The traversal root is never ignored. The two policies are
// independent: with ignoreVCS unset, ".git" entries survive ignoreHidden.
func IsIgnored(name string, isRoot, ignoreHidden, ignoreVCS bool) bool {
	if isRoot {
		return false
	}
	vcs := strings.HasPrefix(name, VCSPrefix)
	if ignoreVCS && vcs {
		return true
	}
	if ignoreHidden && strings.HasPrefix(name, ".") {
		return !vcs || ignoreVCS
	}
	return false
}
