package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the bcrypt input limit
const maxPasswordBytes = 72

// commonPasswords is a short deny list of passwords seen in credential dumps
var commonPasswords = map[string]bool{
	"password": true, "password1": true, "password123": true, "passw0rd": true,
	"12345678": true, "123456789": true, "1234567890": true, "87654321": true,
	"qwerty": true, "qwertyuiop": true, "qwerty123": true, "1q2w3e4r": true,
	"abc12345": true, "abcdefgh": true, "letmein": true, "letmein1": true,
	"iloveyou": true, "sunshine": true, "princess": true, "football": true,
	"baseball": true, "welcome1": true, "welcome123": true, "dragon123": true,
	"superman": true, "trustno1": true, "monkey123": true, "starwars": true,
	"whatever": true, "admin123": true, "administrator": true, "changeme": true,
	"secret123": true, "master123": true, "11111111": true, "00000000": true,
}

// PasswordPolicy checks candidate passwords before they are hashed
type PasswordPolicy struct {
	MinLength int
}

// Validate returns one message per failed rule; nil means the password is acceptable.
// userName and email are the account's attributes the password must not resemble.
func (p PasswordPolicy) Validate(password, userName, email string) []string {
	var problems []string

	if len(password) < p.MinLength {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.MinLength))
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems, fmt.Sprintf("This password is too long. It must contain at most %d bytes.", maxPasswordBytes))
	}
	if commonPasswords[strings.ToLower(password)] {
		problems = append(problems, "This password is too common.")
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		problems = append(problems, "This password is entirely numeric.")
	}
	if attr, ok := similarAttribute(password, userName, email); ok {
		problems = append(problems, fmt.Sprintf("The password is too similar to the %s.", attr))
	}

	return problems
}

func similarAttribute(password, userName, email string) (string, bool) {
	pw := strings.ToLower(password)
	if pw == "" {
		return "", false
	}

	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}

	candidates := []struct{ name, value string }{
		{"user name", userName},
		{"email address", local},
	}
	for _, c := range candidates {
		v := strings.ToLower(c.value)
		if len(v) < 3 {
			continue
		}
		if strings.Contains(pw, v) || strings.Contains(v, pw) {
			return c.name, true
		}
	}
	return "", false
}

// PasswordHasher hashes and verifies passwords with bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher; out-of-range costs fall back to bcrypt.DefaultCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of password
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether password matches hash
func (h *PasswordHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
