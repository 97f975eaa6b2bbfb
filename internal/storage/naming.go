package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// physicalNameLen is the length of a hex-encoded sha256 digest.
const physicalNameLen = sha256.Size * 2

// NewPhysicalName derives a fresh storage key for an upload. The result has no
// relation to filename beyond being hashed from it, so two uploads of the
// same file by the same owner still get distinct keys.
func NewPhysicalName(filename, ownerID string) string {
	h := sha256.New()
	h.Write([]byte(filename))
	h.Write([]byte{0})
	h.Write([]byte(ownerID))
	h.Write([]byte{0})
	h.Write([]byte(uuid.NewString()))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(time.Now().UnixNano(), 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidPhysicalName reports whether s looks like a key produced by
// NewPhysicalName. Upper-case hex is accepted.
func ValidPhysicalName(s string) bool {
	if len(s) != physicalNameLen {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// TrimExtension strips a trailing ".gif" (any case) from a requested filename.
func TrimExtension(filename string) string {
	if len(filename) > len(Extension) && strings.EqualFold(filename[len(filename)-len(Extension):], Extension) {
		return filename[:len(filename)-len(Extension)]
	}
	return filename
}

// DisplayName returns filename without its last extension.
func DisplayName(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i > 0 {
		return filename[:i]
	}
	return filename
}
