package authstore

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// tokenVersion is bumped when the token layout changes; older versions
// that still resolve are re-issued on the spot.
const tokenVersion = 1

// refreshAfter is how long a token stays fresh before resolution
// re-issues it.
const refreshAfter = 30 * 24 * time.Hour

// encodeToken packs a folder path into an opaque token: version, issue
// time, and path, base64-wrapped so the grant file never needs to care
// about path characters.
func encodeToken(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	raw := fmt.Sprintf("%d\x00%d\x00%s", tokenVersion, time.Now().Unix(), path)

	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// decodeToken unpacks a token, reporting whether it is stale and should
// be re-issued. Tokens from a newer format than we understand are
// errors, not stale.
func decodeToken(token string) (path string, stale bool, err error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", false, fmt.Errorf("failed to decode grant token: %w", err)
	}

	parts := strings.SplitN(string(raw), "\x00", 3)
	if len(parts) != 3 {
		return "", false, fmt.Errorf("malformed grant token")
	}

	version, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", false, fmt.Errorf("malformed grant token version: %w", err)
	}

	if version > tokenVersion {
		return "", false, fmt.Errorf("grant token version %d is newer than supported", version)
	}

	issued, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", false, fmt.Errorf("malformed grant token timestamp: %w", err)
	}

	if parts[2] == "" {
		return "", false, fmt.Errorf("grant token has empty path")
	}

	stale = version < tokenVersion || time.Since(time.Unix(issued, 0)) > refreshAfter

	return parts[2], stale, nil
}
