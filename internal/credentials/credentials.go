// Package credentials hashes and verifies passwords. Nothing outside the
// registration and login flows ever touches a plaintext password.
package credentials

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hash derives a salted digest from a plaintext password.
func Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether the plaintext password matches the stored digest.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
