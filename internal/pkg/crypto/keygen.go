// Package crypto provides hashing and random key helpers for ProjectHub.
package crypto

import (
	"crypto/rand"
	"fmt"
)

// Key sizes accepted by the session codec.
const (
	// HashKeySize is the recommended HMAC key length for session cookies.
	HashKeySize = 64

	// BlockKeySize selects AES-256 for session cookie encryption.
	BlockKeySize = 32

	// PasswordLength is the length of generated passwords.
	PasswordLength = 16
)

// Character sets for key generation
const (
	// keyChars is used for config keys so they survive env files unquoted.
	keyChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// passwordChars adds a few symbols that are safe in shells when quoted.
	passwordChars = keyChars + "!@#%^*-_"
)

// GenerateSessionKeys returns a random hash key and block key for session cookies.
func GenerateSessionKeys() (hashKey, blockKey string, err error) {
	hashKey, err = generateRandomString(HashKeySize, keyChars)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate hash key: %w", err)
	}

	blockKey, err = generateRandomString(BlockKeySize, keyChars)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate block key: %w", err)
	}

	return hashKey, blockKey, nil
}

// GeneratePassword returns a random password for seeded accounts.
func GeneratePassword() (string, error) {
	return generateRandomString(PasswordLength, passwordChars)
}

// generateRandomString generates a random string of the specified length
// using characters from the provided character set. Bytes that would bias
// the distribution are rejected.
func generateRandomString(length int, charset string) (string, error) {
	result := make([]byte, 0, length)
	limit := 256 - (256 % len(charset))
	buf := make([]byte, length)

	for len(result) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			result = append(result, charset[int(b)%len(charset)])
			if len(result) == length {
				break
			}
		}
	}

	return string(result), nil
}
