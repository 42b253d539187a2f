package entity

import "time"

// Account is the authentication identity. PasswordHash is a bcrypt hash and
// empty for OAuth-only accounts.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Provider     string // "email" or an OAuth provider name
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
