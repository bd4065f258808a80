// Package homedir resolves the configuration directory that holds the session
// record, the machine identifier and config.yaml.
//
// The default is ~/.titanium. TIAUTH_HOME overrides it, and a leading "~" in
// any supplied path is expanded to the user's home directory. Nothing here
// creates directories; that happens lazily on the write path.
package homedir

import (
	"os"
	"path/filepath"
	"strings"
)

// DirName is the default configuration directory under the user's home.
const DirName = ".titanium"

// EnvHome overrides the configuration directory.
const EnvHome = "TIAUTH_HOME"

// Default returns the configuration directory, honoring TIAUTH_HOME.
func Default() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvHome)); v != "" {
		return Expand(v)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

// Resolve returns path expanded, or Default when path is empty.
func Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return Expand(path)
}

// Expand replaces a leading "~" with the user's home directory and cleans the result.
func Expand(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Clean(path), nil
}
