package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profilehub/profilehub/internal/domain/entity"
)

func TestCalculateAgeAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		dob  string
		want int
		ok   bool
	}{
		{"birthday already passed", "1990-03-01", 35, true},
		{"birthday today", "1990-06-15", 35, true},
		{"birthday later this year", "1990-09-20", 34, true},
		{"same month earlier day", "1990-06-10", 35, true},
		{"same month later day", "1990-06-20", 34, true},
		{"rfc3339 input", "1990-03-01T00:00:00Z", 35, true},
		{"born this year", "2025-01-01", 0, true},
		{"future date", "2030-01-01", 0, false},
		{"empty", "", 0, false},
		{"garbage", "invalid-date", 0, false},
		{"whitespace only", "   ", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := calculateAgeAt(tt.dob, now)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidatePhone(t *testing.T) {
	valid := []string{
		"+1234567890",
		"1234567890",
		"+1 234-567-890",
		"(123) 456-7890",
		"  +1234567890  ",
	}
	for _, p := range valid {
		assert.True(t, ValidatePhone(p), p)
	}

	invalid := []string{
		"",
		"123",
		"abcdefghij",
		"12345abcde",
		"+12345",
	}
	for _, p := range invalid {
		assert.False(t, ValidatePhone(p), p)
	}
}

func TestValidateForSave(t *testing.T) {
	base := func() *entity.Profile {
		return &entity.Profile{
			UserID:      "u1",
			Email:       "a@b.com",
			Username:    "alice",
			Phone:       "+1234567890",
			DateOfBirth: "1990-03-01",
		}
	}

	t.Run("valid profile passes", func(t *testing.T) {
		assert.NoError(t, ValidateForSave(base()))
	})

	t.Run("optional fields may be empty", func(t *testing.T) {
		p := base()
		p.Phone, p.DateOfBirth, p.Username = "", "", ""
		assert.NoError(t, ValidateForSave(p))
	})

	t.Run("bad phone reported first", func(t *testing.T) {
		p := base()
		p.Phone = "abc"
		p.DateOfBirth = "not-a-date"
		err := ValidateForSave(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "phone")
	})

	t.Run("unparsable date of birth", func(t *testing.T) {
		p := base()
		p.DateOfBirth = "03/01/1990"
		err := ValidateForSave(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "YYYY-MM-DD")
	})

	t.Run("future date of birth", func(t *testing.T) {
		p := base()
		p.DateOfBirth = time.Now().AddDate(1, 0, 0).Format("2006-01-02")
		err := ValidateForSave(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "past")
	})

	t.Run("implausibly old date of birth", func(t *testing.T) {
		p := base()
		p.DateOfBirth = "1800-01-01"
		err := ValidateForSave(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "150")
	})

	t.Run("short username", func(t *testing.T) {
		p := base()
		p.Username = "ab"
		err := ValidateForSave(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 3 characters")

		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}
