package application

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/profilehub/profilehub/internal/domain/entity"
)

// ValidationError carries a message safe to render to end users verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

const maxAge = 150

var phoneRe = regexp.MustCompile(`^\+?[0-9\s\-()]{10,}$`)

var dobLayouts = []string{"2006-01-02", time.RFC3339}

// CalculateAge returns whole years elapsed since the given birth date,
// decremented by one when the birthday has not yet occurred this year.
// ok is false for an empty string, an unparsable date, or a date in the
// future (which would yield a negative age).
func CalculateAge(dateOfBirth string) (int, bool) {
	return calculateAgeAt(dateOfBirth, time.Now())
}

func calculateAgeAt(dateOfBirth string, now time.Time) (int, bool) {
	born, ok := parseDOB(dateOfBirth)
	if !ok {
		return 0, false
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

func parseDOB(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ValidatePhone reports whether the trimmed input looks like a phone number:
// an optional leading +, then at least ten characters drawn from digits,
// spaces, hyphens, and parentheses.
func ValidatePhone(phone string) bool {
	return phoneRe.MatchString(strings.TrimSpace(phone))
}

// ValidateForSave checks user-entered fields before persistence, stopping at
// the first failure. Order: phone shape, date-of-birth parseability,
// date-of-birth plausibility, username length.
func ValidateForSave(p *entity.Profile) error {
	if p.Phone != "" && !ValidatePhone(p.Phone) {
		return &ValidationError{Message: "Invalid phone number. Use at least 10 digits, with optional +, spaces, hyphens, or parentheses."}
	}
	if dob := strings.TrimSpace(p.DateOfBirth); dob != "" {
		if _, ok := parseDOB(dob); !ok {
			return &ValidationError{Message: "Invalid date of birth. Use the YYYY-MM-DD format."}
		}
		age, ok := CalculateAge(dob)
		if !ok || age > maxAge {
			return &ValidationError{Message: fmt.Sprintf("Date of birth must be in the past and yield an age of at most %d years.", maxAge)}
		}
	}
	if u := p.Username; u != "" && len([]rune(u)) < 3 {
		return &ValidationError{Message: "Username must be at least 3 characters long."}
	}
	return nil
}
