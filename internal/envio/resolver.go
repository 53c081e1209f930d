package envio

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// InferRemoteDir finds the remote environment directory for the working
// directory: `.envtrack/` in the directory itself, else `.envtrack/` at
// the git toplevel. With requireHistory set, the directory must already
// hold a history.yaml.
func InferRemoteDir(cwd string, requireHistory bool) (string, error) {
	local := filepath.Join(cwd, RemoteDirName)
	if hasHistory(local) {
		return local, nil
	}

	out, err := exec.Command("git", "-C", cwd, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		if !requireHistory && dirExists(local) {
			return local, nil
		}
		return "", fmt.Errorf("%s has no %s directory and is not in a git repo", cwd, RemoteDirName)
	}
	root := strings.TrimSpace(string(out))
	remote := filepath.Join(root, RemoteDirName)
	if !requireHistory || hasHistory(remote) {
		return remote, nil
	}
	return "", fmt.Errorf("no %s found in %s", HistoryFile, remote)
}

func hasHistory(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, HistoryFile))
	return err == nil
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
