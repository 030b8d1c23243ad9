package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for password hashing.
const BcryptCost = 12

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// MasterKeyMatch compares a login credential against the configured
// emergency master key in constant time. An empty configured key
// disables the bypass.
func MasterKeyMatch(candidate, masterKey string) bool {
	if masterKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(masterKey)) == 1
}

// HashToken returns the hex SHA-256 digest used to store refresh tokens
// at rest. The raw token never touches the database.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
