package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// CurrentConfigVersion is the configVersion of the request file layout this
// build understands best.
const CurrentConfigVersion = "1"

// SupportedConfigVersions lists every configVersion Load accepts, oldest
// first.
var SupportedConfigVersions = []string{CurrentConfigVersion}

// ErrUnsupportedConfigVersion is wrapped by the error Load returns for a
// request file written against an unknown layout.
var ErrUnsupportedConfigVersion = errors.New("unsupported configVersion")

// IsSupportedConfigVersion reports whether a request file declaring v can be
// loaded.
func IsSupportedConfigVersion(v string) bool {
	return slices.Contains(SupportedConfigVersions, v)
}

// SupportedConfigVersionsCSV renders SupportedConfigVersions for messages.
func SupportedConfigVersionsCSV() string {
	return strings.Join(SupportedConfigVersions, ", ")
}

// checkConfigVersion rejects a request file whose configVersion is not
// listed in SupportedConfigVersions.
func checkConfigVersion(v string) error {
	if IsSupportedConfigVersion(v) {
		return nil
	}
	return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedConfigVersion, v, SupportedConfigVersionsCSV())
}
