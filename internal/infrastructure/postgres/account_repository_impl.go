package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/profilehub/profilehub/internal/auth"
	"github.com/profilehub/profilehub/internal/domain/entity"
	"github.com/profilehub/profilehub/internal/domain/repository"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash, provider)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, a.Email, a.PasswordHash, a.Provider)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return auth.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.getOne(ctx, `
		SELECT id, email, COALESCE(password_hash, ''), provider, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.getOne(ctx, `
		SELECT id, email, COALESCE(password_hash, ''), provider, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`, email)
}

func (r *AccountRepository) getOne(ctx context.Context, query string, arg any) (*entity.Account, error) {
	a := &entity.Account{}
	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Provider, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) UpsertOAuth(ctx context.Context, email, provider string) (*entity.Account, error) {
	a := &entity.Account{Email: email, Provider: provider}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, provider)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING id, email, COALESCE(password_hash, ''), provider, created_at, updated_at
	`, email, provider)
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Provider, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
