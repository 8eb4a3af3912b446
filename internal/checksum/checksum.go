// Package checksum computes the content digests used for change detection
// and If-Match concurrency.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumReader digests everything read from r.
func SumReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("checksum: read: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Match reports whether ifMatch accepts data. An empty ifMatch, or "*",
// accepts anything; surrounding quotes are ignored.
func Match(ifMatch string, data []byte) bool {
	if ifMatch == "" || ifMatch == "*" {
		return true
	}
	if n := len(ifMatch); n >= 2 && ifMatch[0] == '"' && ifMatch[n-1] == '"' {
		ifMatch = ifMatch[1 : n-1]
	}
	return ifMatch == Sum(data)
}
