package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/profilehub/profilehub/internal/domain/entity"
	"github.com/profilehub/profilehub/internal/domain/repository"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// profileColumns keeps the SELECT list in one place. Optional columns are
// nullable in the schema and coalesced to '' here so entities stay plain
// strings; date_of_birth is rendered as YYYY-MM-DD text.
const profileColumns = `
	user_id, email,
	COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(username, ''),
	COALESCE(to_char(date_of_birth, 'YYYY-MM-DD'), ''),
	COALESCE(phone, ''), COALESCE(bio, ''), COALESCE(location, ''), COALESCE(timezone, ''),
	COALESCE(avatar_url, ''), COALESCE(cover_url, ''),
	COALESCE(gallery, '{}'),
	created_at, updated_at`

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	p := &entity.Profile{}
	err := row.Scan(
		&p.UserID, &p.Email,
		&p.FirstName, &p.LastName, &p.Username,
		&p.DateOfBirth,
		&p.Phone, &p.Bio, &p.Location, &p.Timezone,
		&p.AvatarURL, &p.CoverURL,
		&p.Gallery,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, p *entity.Profile) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, email, username)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email, updated_at = now()
		RETURNING `+profileColumns,
		p.UserID, p.Email, p.Username)
	got, err := scanProfile(row)
	if err != nil {
		return RewriteProfileError(err)
	}
	*p = *got
	return nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE profiles SET
			first_name    = NULLIF($2, ''),
			last_name     = NULLIF($3, ''),
			username      = NULLIF($4, ''),
			date_of_birth = NULLIF($5, '')::date,
			phone         = NULLIF($6, ''),
			bio           = NULLIF($7, ''),
			location      = NULLIF($8, ''),
			timezone      = NULLIF($9, ''),
			avatar_url    = NULLIF($10, ''),
			cover_url     = NULLIF($11, ''),
			gallery       = COALESCE($12, '{}'),
			updated_at    = now()
		WHERE user_id = $1
		RETURNING `+profileColumns,
		p.UserID,
		p.FirstName, p.LastName, p.Username,
		p.DateOfBirth,
		p.Phone, p.Bio, p.Location, p.Timezone,
		p.AvatarURL, p.CoverURL,
		p.Gallery)
	got, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return RewriteProfileError(errors.New("violates foreign key constraint: profile row missing"))
	}
	if err != nil {
		return RewriteProfileError(err)
	}
	*p = *got
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	return err
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
