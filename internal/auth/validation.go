package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	eightDigits = regexp.MustCompile(`^[0-9]{8}$`)
	nameChars   = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	letters     = regexp.MustCompile(`^[a-zA-Z]+$`)
)

const passwordSymbols = "@$!%*?&"

// InstitutionalEmail derives the only email address a user may register with.
func InstitutionalEmail(userID, domain string) string {
	return userID + "@" + domain
}

func ValidateUserID(userID string) error {
	if !eightDigits.MatchString(userID) {
		return &ValidationError{Reason: "UserID must be exactly 8 digits"}
	}
	return nil
}

func ValidatePassword(password string) error {
	var hasLetter, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	if utf8.RuneCountInString(password) < 8 || !hasLetter || !hasDigit || !hasSymbol {
		return &ValidationError{Reason: "Password must be at least 8 characters with letters, digits, and a special character (" + passwordSymbols + ")"}
	}
	return nil
}

// ValidateRegistration checks a registration form field by field and stops at
// the first violation.
func ValidateRegistration(req RegisterRequest, domain string) error {
	if err := ValidateUserID(req.UserID); err != nil {
		return err
	}
	if !nameChars.MatchString(req.Name) {
		return &ValidationError{Reason: "Name must contain only upper or lower case letters"}
	}
	if err := ValidatePassword(req.Password); err != nil {
		return err
	}
	if req.Email != InstitutionalEmail(req.UserID, domain) {
		return &ValidationError{Reason: fmt.Sprintf("Email must be in the format 8-digit UserID followed by @%s", domain)}
	}
	if !eightDigits.MatchString(req.Phone) {
		return &ValidationError{Reason: "Phone number must be exactly 8 digits"}
	}
	if !letters.MatchString(req.Major) {
		return &ValidationError{Reason: "Major must contain only upper or lower case letters"}
	}
	return nil
}
