// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package secrets generates temporary passwords and opaque reset tokens.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	// DefaultPasswordLength is used when no explicit length is requested.
	DefaultPasswordLength = 12
	// TokenBytes is the number of random bytes per reset token (256 bits
	// of entropy before hex encoding).
	TokenBytes = 32
)

// Alphabet for temporary passwords. Excludes characters that are easy to
// misread: 0/O, 1/l/I/i.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789!@#$%"

// GeneratePassword returns a temporary password of the given length drawn
// uniformly from Alphabet. Lengths <= 0 fall back to DefaultPasswordLength.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		length = DefaultPasswordLength
	}

	// Rejection sampling keeps the draw uniform: a raw byte is only used
	// when it falls inside the largest multiple of len(Alphabet) below 256.
	limit := byte(256 - 256%len(Alphabet))

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}

// GenerateToken returns a hex-encoded opaque token suitable as a reset
// record key.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
