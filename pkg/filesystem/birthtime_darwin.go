//go:build darwin

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// birthTime returns the file's creation time from the stat birthtime
// field, which APFS and HFS+ always populate.
func birthTime(_ string, info os.FileInfo) *time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}

	created := time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)

	return &created
}
