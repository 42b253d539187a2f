package repository

import (
	"context"

	"github.com/profilehub/profilehub/internal/domain/entity"
)

// ProfileRepository defines profile persistence operations.
type ProfileRepository interface {
	// GetByUserID returns (nil, nil) when no profile exists yet.
	GetByUserID(ctx context.Context, userID string) (*entity.Profile, error)
	// Upsert inserts the profile or, on user_id conflict, refreshes email.
	Upsert(ctx context.Context, p *entity.Profile) error
	Update(ctx context.Context, p *entity.Profile) error
	Delete(ctx context.Context, userID string) error
}
