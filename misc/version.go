// Package misc keeps build time information and small helpers shared by
// other packages.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// Set by the linker: -X rotword/misc.version=... -X rotword/misc.gitHash=...
var (
	version = "dev"
	gitHash = "unknown"
)

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns hash of the commit program was built from.
func GetGitHash() string {
	return gitHash
}

// GetAppName returns name of the executable without extension.
func GetAppName() string {
	name := filepath.Base(os.Args[0])
	return strings.TrimSuffix(name, filepath.Ext(name))
}
