package utils

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// NormalizeEmail trims surrounding space and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ModifiedUsername appends a random "-xxxxxx" hex suffix to base.
func ModifiedUsername(base string) (string, error) {
	suffix, err := RandomHex(3)
	if err != nil {
		return "", err
	}
	return base + "-" + suffix, nil
}

// ExtractNameFromEmail extracts the part before '@'
func ExtractNameFromEmail(email string) string {
	name, _, found := strings.Cut(email, "@")
	if !found || name == "" {
		return email
	}
	return name
}
