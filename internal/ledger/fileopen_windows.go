//go:build windows

package ledger

import "os"

// openFileNoFollow opens a file for writing. Windows has no O_NOFOLLOW;
// os.OpenFile does not traverse symlinks for create-new targets, which is
// the case that matters for the random-suffixed temp files written here.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}
