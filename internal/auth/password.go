package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters matching the stored hashes: 16-byte salt, 64-byte key.
const (
	saltLen = 16
	keyLen  = 64
	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

// NewSalt returns a fresh random salt, hex-encoded.
func NewSalt() (string, error) {
	b := make([]byte, saltLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword derives the hex-encoded scrypt key for a password and salt.
func HashPassword(password, saltHex string) (string, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// VerifyPassword compares a password attempt against a stored salt and hash
// in constant time. Any decoding or derivation problem reads as "incorrect"
// so the check fails closed.
func VerifyPassword(password, saltHex, hashHex string) bool {
	attempt, err := HashPassword(password, saltHex)
	if err != nil {
		return false
	}
	a, err := hex.DecodeString(attempt)
	if err != nil {
		return false
	}
	b, err := hex.DecodeString(hashHex)
	if err != nil || len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
