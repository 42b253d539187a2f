package entity

import "time"

// MaxGalleryImages caps the gallery sequence length.
const MaxGalleryImages = 9

// Profile is the application-level user record, one per account. Optional
// text fields are empty strings when unset; Gallery is an ordered list of
// public image URLs.
type Profile struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Username    string   `json:"username"`
	DateOfBirth string   `json:"date_of_birth"` // YYYY-MM-DD
	Phone       string   `json:"phone"`
	Bio         string   `json:"bio"`
	Location    string   `json:"location"`
	Timezone    string   `json:"timezone"`
	AvatarURL   string   `json:"avatar_url"`
	CoverURL    string   `json:"cover_url"`
	Gallery     []string `json:"gallery"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
