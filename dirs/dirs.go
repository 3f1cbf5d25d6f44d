// Package dirs holds the single mockable root the supervisor resolves
// every absolute path against, so tests can run the mount-root scan,
// the per-user base directory checks, and the /proc lookups entirely
// under a temporary directory instead of the real filesystem root.
package dirs

import "path/filepath"

var rootDir = "/"

// SetRootDir overrides the root every path in this package is joined
// against. Tests call this with a temporary directory and restore "/"
// afterwards.
func SetRootDir(root string) {
	if root == "" {
		root = "/"
	}
	rootDir = root
}

// RootDir returns the current root.
func RootDir() string {
	return rootDir
}

// Path joins elem onto the current root, the way filepath.Join would
// join them onto "/" in production.
func Path(elem ...string) string {
	return filepath.Join(append([]string{rootDir}, elem...)...)
}
