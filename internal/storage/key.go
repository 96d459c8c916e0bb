package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ObjectKey creates a new unique key for a record called name.
// Format: <name>/<timestamp>-<random>.pb
// Example: speech/1701432000-a1b2c3d4.pb
func ObjectKey(name string) string {
	prefix := sanitize(name)
	timestamp := time.Now().Unix()
	random := make([]byte, 4)
	if _, err := rand.Read(random); err != nil {
		// Fallback to timestamp only if crypto/rand fails
		return fmt.Sprintf("%s/%d.pb", prefix, timestamp)
	}
	return fmt.Sprintf("%s/%d-%s.pb", prefix, timestamp, hex.EncodeToString(random))
}

// sanitize keeps characters that are safe in both paths and S3 keys.
func sanitize(name string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
	s = strings.Trim(s, ".")
	if s == "" {
		return "summary"
	}
	return s
}
