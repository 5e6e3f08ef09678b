package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the single configured admin identity. Both values come
// from runtime configuration; nothing credential-shaped lives in source.
type Credentials struct {
	Email        string
	PasswordHash string
}

// NormalizeEmail lower-cases and trims an address the way every auth path
// compares them.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VerifyCredentials checks a login attempt against the configured admin
// identity. Email comparison is case-insensitive; the password check is
// bcrypt's constant-time comparison. Callers surface any failure as the same
// generic invalid-credentials error.
func VerifyCredentials(creds Credentials, email, password string) bool {
	if creds.Email == "" || creds.PasswordHash == "" {
		return false
	}
	if NormalizeEmail(email) != NormalizeEmail(creds.Email) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)) == nil
}

// AllowList is the fixed set of normalized emails permitted to receive magic
// links.
type AllowList map[string]struct{}

// ParseAllowList builds an AllowList from a comma-separated configuration
// value, ignoring empty entries.
func ParseAllowList(value string) AllowList {
	list := make(AllowList)
	for _, part := range strings.Split(value, ",") {
		if email := NormalizeEmail(part); email != "" {
			list[email] = struct{}{}
		}
	}
	return list
}

// Contains reports whether the normalized email is allow-listed.
func (l AllowList) Contains(email string) bool {
	_, ok := l[NormalizeEmail(email)]
	return ok
}
