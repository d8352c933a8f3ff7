package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateVerificationCode generates a URL-safe random code of roughly
// 4/3*n characters; n is the number of random bytes (24 or 32 recommended).
func GenerateVerificationCode(n int) (string, error) {
	if n <= 0 {
		n = 24
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// RawURLEncoding avoids '=' padding and the '+' '/' characters
	return base64.RawURLEncoding.EncodeToString(b), nil
}
