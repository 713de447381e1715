package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Admin holds the single dashboard account.
type Admin struct {
	Username     string
	PasswordHash string
}

// Check reports whether username and password match the admin account.
func (a Admin) Check(username, password string) bool {
	if a.PasswordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	return userOK && passErr == nil
}
