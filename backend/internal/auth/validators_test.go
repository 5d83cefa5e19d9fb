package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		ok       bool
	}{
		{"valid simple", "alice", true},
		{"valid with underscore and digits", "alice_42", true},
		{"minimum length", "abc", true},
		{"maximum length", strings.Repeat("a", 30), true},
		{"too short", "ab", false},
		{"too long", strings.Repeat("a", 31), false},
		{"spaces rejected", "alice smith", false},
		{"hyphen rejected", "alice-smith", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := ValidateUsername(tt.username)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"alice@example.com", "a.b@sub.domain.org", "x+tag@host.io"}
	for _, email := range valid {
		ok, _ := ValidateEmail(email)
		assert.True(t, ok, email)
	}

	invalid := []string{"", "alice", "alice@", "@example.com", "alice@example", "a b@example.com"}
	for _, email := range invalid {
		ok, msg := ValidateEmail(email)
		assert.False(t, ok, email)
		assert.Equal(t, "Please provide a valid email address", msg)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
		message  string
	}{
		{"valid", "Password1!", true, ""},
		{"too short", "Pa1!", false, "Password must be at least 8 characters long"},
		{"no uppercase", "password1!", false, "Password must contain at least one uppercase letter"},
		{"no lowercase", "PASSWORD1!", false, "Password must contain at least one lowercase letter"},
		{"no digit", "Password!", false, "Password must contain at least one number"},
		{"no special", "Password1", false, "Password must contain at least one special character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := ValidatePassword(tt.password)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestValidateFullName(t *testing.T) {
	ok, _ := ValidateFullName("Alice Hargrove")
	assert.True(t, ok)

	// Surrounding whitespace does not count toward the length
	ok, _ = ValidateFullName("  A  ")
	assert.False(t, ok)

	ok, _ = ValidateFullName(strings.Repeat("a", 51))
	assert.False(t, ok)

	ok, _ = ValidateFullName("Jo")
	assert.True(t, ok)
}
