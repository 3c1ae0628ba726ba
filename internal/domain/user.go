// Package domain contains the core business entities for the caixa ledger.
// These are plain Go structs with no infrastructure dependencies, representing
// the users of the billiards hall and the cash transactions they record.
package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Username length limits.
const (
	MinUsernameLength = 1
	MaxUsernameLength = 255
)

// User represents a registered account.
// Users own transactions; every transaction query is scoped to a user ID.
type User struct {
	// ID is the unique identifier for the user (assigned by the database).
	ID int64 `json:"id"`

	// Username is the unique login name. Comparison is case-sensitive and
	// the value never changes after registration.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a new User with default values.
func NewUser(username, passwordHash string) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

// ValidateUsername checks the username shape. Surrounding whitespace is not
// allowed so that "alice" and "alice " cannot coexist by accident.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return NewDomainError(ErrInvalidUsername,
			fmt.Sprintf("must be between %d and %d characters", MinUsernameLength, MaxUsernameLength), "")
	}
	if strings.TrimSpace(username) != username {
		return NewDomainError(ErrInvalidUsername, "must not start or end with whitespace", "")
	}
	return nil
}
