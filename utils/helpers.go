package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// InitialPasswordPrefix is the fixed institution tag on generated passwords.
const InitialPasswordPrefix = "TES"

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateInitialPassword builds the short human-shareable password issued at
// admission or teacher creation: the institution tag, two letters from the
// name (padded with 'X'), and the trailing digits of the phone number.
// Deterministic whenever the phone carries at least one digit. Not a
// security boundary: holders are expected to change it.
func GenerateInitialPassword(name, phone string) string {
	var letters []rune
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
			if len(letters) == 2 {
				break
			}
		}
	}
	for len(letters) < 2 {
		letters = append(letters, 'X')
	}

	var digits []rune
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	var tail string
	if len(digits) >= 2 {
		tail = string(digits[len(digits)-2:])
	} else if len(digits) == 1 {
		tail = string(digits)
	} else {
		tail = randomDigit()
	}

	pwd := InitialPasswordPrefix + string(letters) + tail
	if len(pwd) > 7 {
		pwd = pwd[:7]
	}
	return pwd
}

func randomDigit() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10))
	if err != nil {
		return "1"
	}
	return n.String()
}

// IsValidRole checks if a role is valid
func IsValidRole(role string) bool {
	validRoles := []string{"student", "teacher", "admin"}
	for _, validRole := range validRoles {
		if role == validRole {
			return true
		}
	}
	return false
}

// IsValidAdmissionStatus checks if an admission status is valid
func IsValidAdmissionStatus(status string) bool {
	validStatuses := []string{"pending", "confirmed", "rejected"}
	for _, validStatus := range validStatuses {
		if status == validStatus {
			return true
		}
	}
	return false
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	return input
}
