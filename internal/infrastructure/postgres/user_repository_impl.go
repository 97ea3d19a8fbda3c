package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicahealth/clinica-backend/internal/domain/entity"
	"github.com/clinicahealth/clinica-backend/internal/domain/repository"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUserAndPatient inserts the user, its validation state and the
// patient profile inside one transaction. Rollback on any failure leaves
// no partial pair behind; duplicate emails surface as ErrDuplicateEmail
// from the unique constraint.
func (r *UserRepository) CreateUserAndPatient(ctx context.Context, u *entity.User, p *entity.Patient) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role, slug, is_active, is_delete, is_verified, otp, otp_expiry)
		VALUES ($1, $2, $3, $4, $5, true, false, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.Name, u.Role, u.Slug,
		u.Validation.IsVerified, u.Validation.OTP, u.Validation.Expiry)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapPgError(err)
	}

	p.UserID = u.ID
	p.Slug = u.Slug
	row = tx.QueryRow(ctx, `
		INSERT INTO patients (user_id, name, slug)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Name, p.Slug)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return mapPgError(err)
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string, includeSecrets bool) (*entity.User, error) {
	u := &entity.User{}

	// Secret columns are projected out unless explicitly requested.
	cols := "id, email, '', name, role, slug, fcm_token, avatar_url, is_active, is_delete, is_verified, 0, otp_expiry, created_at, updated_at"
	if includeSecrets {
		cols = "id, email, password_hash, name, role, slug, fcm_token, avatar_url, is_active, is_delete, is_verified, otp, otp_expiry, created_at, updated_at"
	}

	row := r.pool.QueryRow(ctx, `SELECT `+cols+` FROM users WHERE email = $1`, email)
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &u.Slug,
		&u.FCMToken, &u.AvatarURL, &u.IsActive, &u.IsDelete,
		&u.Validation.IsVerified, &u.Validation.OTP, &u.Validation.Expiry,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *UserRepository) UpdateValidation(ctx context.Context, email string, v entity.Validation) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET is_verified = $1, otp = $2, otp_expiry = $3, updated_at = now()
		WHERE email = $4
	`, v.IsVerified, v.OTP, v.Expiry, email)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, email, newHash string) error {
	return r.updateColumn(ctx, email, "password_hash", newHash)
}

func (r *UserRepository) UpdateFCMToken(ctx context.Context, email, token string) error {
	return r.updateColumn(ctx, email, "fcm_token", token)
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, email, url string) error {
	return r.updateColumn(ctx, email, "avatar_url", url)
}

func (r *UserRepository) updateColumn(ctx context.Context, email, column, value string) error {
	res, err := r.pool.Exec(ctx, `UPDATE users SET `+column+` = $1, updated_at = now() WHERE email = $2`, value, email)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicateEmail
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
