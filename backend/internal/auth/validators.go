package auth

import (
	"regexp"
	"strings"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	passwordUpper   = regexp.MustCompile(`[A-Z]`)
	passwordLower   = regexp.MustCompile(`[a-z]`)
	passwordDigit   = regexp.MustCompile(`[0-9]`)
	passwordSpecial = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// ValidateUsername checks the 3-30 char alphanumeric-plus-underscore handle rule
func ValidateUsername(username string) (ok bool, message string) {
	if len(username) < 3 || len(username) > 30 {
		return false, "Username must be between 3 and 30 characters"
	}
	if !usernameRegex.MatchString(username) {
		return false, "Username can only contain letters, numbers, and underscores"
	}
	return true, ""
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) (ok bool, message string) {
	if !emailRegex.MatchString(email) {
		return false, "Please provide a valid email address"
	}
	return true, ""
}

// ValidatePassword checks length and character-class requirements
func ValidatePassword(password string) (ok bool, message string) {
	switch {
	case len(password) < 8:
		return false, "Password must be at least 8 characters long"
	case !passwordUpper.MatchString(password):
		return false, "Password must contain at least one uppercase letter"
	case !passwordLower.MatchString(password):
		return false, "Password must contain at least one lowercase letter"
	case !passwordDigit.MatchString(password):
		return false, "Password must contain at least one number"
	case !passwordSpecial.MatchString(password):
		return false, "Password must contain at least one special character"
	}
	return true, ""
}

// ValidateFullName checks the 2-50 char display-name rule
func ValidateFullName(name string) (ok bool, message string) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 || len(trimmed) > 50 {
		return false, "Full name must be between 2 and 50 characters"
	}
	return true, ""
}
