package config

import (
	"os"
	"path/filepath"
)

// FindLocalConfig finds the nearest .jbt config file by walking up from
// dir. The walk stops at the first directory that marks a project root,
// so a sibling checkout's config never bleeds into this project's build.
func FindLocalConfig(dir string) string {
	for {
		for _, ext := range []string{"yml", "yaml", "json", "toml"} {
			path := filepath.Join(dir, ".jbt."+ext)

			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		if isProjectRoot(dir) {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}

// isProjectRoot reports whether dir is the top of a project checkout. A
// version-control directory is the marker; the config check runs before
// this one, so a config at the root itself is still found.
func isProjectRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))

	return err == nil
}
