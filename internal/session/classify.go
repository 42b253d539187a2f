package session

import (
	"errors"
	"strings"

	"github.com/profilehub/profilehub/internal/auth"
)

// IsAlreadySignedOut classifies a sign-out failure as "the session was
// already gone". The rules match on status/code fields and message
// substrings; they are deliberately centralized here because matching on
// upstream message text is brittle and must be revisable in one place.
func IsAlreadySignedOut(err error) bool {
	if err == nil {
		return false
	}
	var ae *auth.Error
	if errors.As(err, &ae) {
		if ae.Status == 403 || ae.Code == "403" {
			return true
		}
		if ae.Response != nil && ae.Response.Status == 403 {
			return true
		}
		return messageSignalsSignedOut(ae.Message)
	}
	return messageSignalsSignedOut(err.Error())
}

func messageSignalsSignedOut(msg string) bool {
	m := strings.ToLower(msg)
	if strings.Contains(m, "forbidden") {
		return true
	}
	if strings.Contains(m, "session") && strings.Contains(m, "missing") {
		return true
	}
	return strings.Contains(m, "auth session")
}
