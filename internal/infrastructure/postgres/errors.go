package postgres

import "strings"

// RewriteProfileError maps low-level Postgres error text onto user-facing
// messages for the profile save path. Matching on message substrings is
// brittle against driver changes, so every rule lives in this one function.
// Unrecognized errors pass through unchanged.
func RewriteProfileError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()

	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique") {
		return &UserFacingError{Message: "Username already exists. Please choose another one."}
	}
	if strings.Contains(msg, "violates foreign key") {
		return &UserFacingError{Message: "Invalid user reference."}
	}
	if strings.Contains(msg, "column") || strings.Contains(msg, "does not exist") {
		return &UserFacingError{Message: "Database schema needs to be updated. Run the latest migration from db/migrations."}
	}
	return err
}

// UserFacingError carries a message safe to render to end users verbatim.
type UserFacingError struct {
	Message string
}

func (e *UserFacingError) Error() string { return e.Message }
