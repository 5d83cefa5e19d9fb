package auth

import (
	"golang.org/x/crypto/bcrypt"
	"kinnected/backend/pkg/apperrors"
)

const bcryptCost = 10

// HashPassword hashes a plaintext password with a per-hash random salt.
// The plaintext is never persisted or logged.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", apperrors.Server("Failed to hash password", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the candidate matches the stored hash
func CheckPassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
