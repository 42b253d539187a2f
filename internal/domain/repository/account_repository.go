package repository

import (
	"context"

	"github.com/profilehub/profilehub/internal/domain/entity"
)

// AccountRepository defines account persistence operations.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	// UpsertOAuth creates the account on first OAuth login and returns the
	// existing one afterwards.
	UpsertOAuth(ctx context.Context, email, provider string) (*entity.Account, error)
	Delete(ctx context.Context, id string) error
}
