package gcstore

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Media categories. Each maps to a top-level folder in the bucket.
const (
	CategoryAvatar  = "avatar"
	CategoryCover   = "cover"
	CategoryGallery = "gallery"
)

const (
	maxAvatarBytes = 5 << 20
	maxImageBytes  = 10 << 20
)

var allowedExts = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// extOf returns the lowercased extension of filename without the dot.
func extOf(filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	return strings.ToLower(ext)
}

// validateFile checks extension and size for the given category before any
// bytes hit the network. The returned error messages are user-facing.
func validateFile(category, filename string, size int64) (contentType string, err error) {
	ct, ok := allowedExts[extOf(filename)]
	if !ok {
		return "", &UploadError{Message: "Invalid file type. Only JPG, PNG, and WebP are allowed."}
	}
	limit := int64(maxImageBytes)
	label := "10MB"
	if category == CategoryAvatar {
		limit = maxAvatarBytes
		label = "5MB"
	}
	if size > limit {
		return "", &UploadError{Message: fmt.Sprintf("File size must be less than %s", label)}
	}
	return ct, nil
}

// objectPath builds <category>/<userID>/<timestamp>-<random>.<ext>. The
// timestamp plus random suffix keeps concurrent uploads from colliding and
// makes object names unguessable enough for cache busting.
func objectPath(category, userID, filename string, now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s/%s/%d-%s.%s", category, userID, now.UnixMilli(), suffix, extOf(filename))
}

// folderPrefix is the listing prefix for one user's files in a category.
func folderPrefix(category, userID string) string {
	return fmt.Sprintf("%s/%s/", category, userID)
}
