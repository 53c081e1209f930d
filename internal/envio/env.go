package envio

import "path/filepath"

// RemoteDirName is the conventional directory for the shared copy inside
// a version-controlled project.
const RemoteDirName = ".envtrack"

// EnvDir returns the local directory for the named environment under the
// tracker root.
func EnvDir(root, name string) string {
	return filepath.Join(root, "envs", name)
}
