//go:build linux

package filesystem

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// birthTime returns the file's creation time via statx, or nil when the
// kernel or filesystem does not report one (STATX_BTIME is optional).
func birthTime(path string, _ os.FileInfo) *time.Time {
	var stx unix.Statx_t

	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx)
	if err != nil {
		return nil
	}

	if stx.Mask&unix.STATX_BTIME == 0 {
		return nil
	}

	created := time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))

	return &created
}
