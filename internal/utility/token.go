package utility

import (
	"crypto/sha256"
	"crypto/subtle"
)

// ConstantTimeEquals compares two tokens in constant time.
// Both sides are hashed first so the comparison leaks neither
// content nor length of the secret.
func ConstantTimeEquals(token, secret string) bool {
	tokenHash := sha256.Sum256([]byte(token))
	secretHash := sha256.Sum256([]byte(secret))

	return subtle.ConstantTimeCompare(tokenHash[:], secretHash[:]) == 1
}
