package common

import (
	"path/filepath"
	"slices"
	"strings"
)

// WipeByteArray zeroes b in place. Used for passwords read from the terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// IsAcceptedDocument reports whether name has one of AcceptedExtensions,
// compared case-insensitively.
func IsAcceptedDocument(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(AcceptedExtensions, ext)
}
