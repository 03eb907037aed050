package id

import (
	"crypto/rand"
	"encoding/hex"
)

const Len = 32

// NewID32 returns a public identifier: 32 lower-case hex characters.
func NewID32() string {
	b := make([]byte, Len/2)
	if _, err := rand.Read(b); err != nil {
		panic("id: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// Valid reports whether s has the NewID32 shape.
func Valid(s string) bool {
	if len(s) != Len {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
