package postgres

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteProfileError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want string
	}{
		{"nil", nil, ""},
		{"duplicate key", errors.New(`ERROR: duplicate key value violates unique constraint "profiles_username_key"`), "Username already exists. Please choose another one."},
		{"unique keyword alone", errors.New("unique violation"), "Username already exists. Please choose another one."},
		{"foreign key", errors.New(`insert or update on table "profiles" violates foreign key constraint`), "Invalid user reference."},
		{"missing column", errors.New(`ERROR: column "timezone" of relation "profiles" does not exist`), "Database schema needs to be updated. Run the latest migration from db/migrations."},
		{"does not exist alone", errors.New(`relation "profiles" does not exist`), "Database schema needs to be updated. Run the latest migration from db/migrations."},
		{"passthrough", errors.New("connection refused"), "connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RewriteProfileError(tt.in)
			if tt.want == "" {
				assert.NoError(t, got)
				return
			}
			assert.EqualError(t, got, tt.want)
		})
	}
}
