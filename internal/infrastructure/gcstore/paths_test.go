package gcstore

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name     string
		category string
		filename string
		size     int64
		wantCT   string
		wantErr  string
	}{
		{"jpg avatar ok", CategoryAvatar, "me.jpg", 1 << 20, "image/jpeg", ""},
		{"jpeg uppercase ext", CategoryCover, "photo.JPEG", 1 << 20, "image/jpeg", ""},
		{"png gallery ok", CategoryGallery, "shot.png", 9 << 20, "image/png", ""},
		{"webp ok", CategoryGallery, "shot.webp", 100, "image/webp", ""},
		{"gif rejected", CategoryAvatar, "anim.gif", 100, "", "Invalid file type. Only JPG, PNG, and WebP are allowed."},
		{"no extension", CategoryAvatar, "noext", 100, "", "Invalid file type. Only JPG, PNG, and WebP are allowed."},
		{"avatar over 5MB", CategoryAvatar, "big.png", 5<<20 + 1, "", "File size must be less than 5MB"},
		{"avatar exactly 5MB", CategoryAvatar, "big.png", 5 << 20, "image/png", ""},
		{"cover over 10MB", CategoryCover, "big.png", 10<<20 + 1, "", "File size must be less than 10MB"},
		{"gallery exactly 10MB", CategoryGallery, "big.jpg", 10 << 20, "image/jpeg", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := validateFile(tt.category, tt.filename, tt.size)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				var ue *UploadError
				assert.ErrorAs(t, err, &ue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCT, ct)
		})
	}
}

func TestObjectPath(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	got := objectPath(CategoryAvatar, "u-123", "Face.JPG", now)

	want := regexp.MustCompile(fmt.Sprintf(`^avatar/u-123/%d-[0-9a-f]{8}\.jpg$`, now.UnixMilli()))
	assert.Regexp(t, want, got)

	// Two calls for the same instant must not collide.
	other := objectPath(CategoryAvatar, "u-123", "Face.JPG", now)
	assert.NotEqual(t, got, other)
}

func TestFolderPrefix(t *testing.T) {
	assert.Equal(t, "gallery/u-1/", folderPrefix(CategoryGallery, "u-1"))
}
