// Package buildtime exposes the version stamped into the binary at build.
package buildtime

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

//go:embed revision
var revision string

func init() {
	version = strings.TrimSpace(version)
	revision = strings.TrimSpace(revision)
}

// VersionString renders the released version and the commit it was cut from.
func VersionString() string {
	return version + " (commit: " + revision + ")"
}
