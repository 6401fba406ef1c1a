//go:build !linux && !darwin

package filesystem

import (
	"os"
	"time"
)

// birthTime returns nil on platforms where we don't extract creation
// times; callers treat a missing creation time as "unknown".
func birthTime(_ string, _ os.FileInfo) *time.Time {
	return nil
}
