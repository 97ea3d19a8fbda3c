package repository

import (
	"context"
	"errors"

	"github.com/clinicahealth/clinica-backend/internal/domain/entity"
)

// ErrNotFound is returned by lookups when no record matches.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when a create collides with the unique
// email constraint.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository is the credential store consumed by the auth workflows.
type UserRepository interface {
	// CreateUserAndPatient persists the user and its patient profile in a
	// single transaction. On any failure neither record remains.
	CreateUserAndPatient(ctx context.Context, u *entity.User, p *entity.Patient) error

	// GetByEmail loads a user. Secret fields (password hash, OTP) are
	// zeroed unless includeSecrets is set.
	GetByEmail(ctx context.Context, email string, includeSecrets bool) (*entity.User, error)

	// UpdateValidation replaces the whole validation value for the user.
	UpdateValidation(ctx context.Context, email string, v entity.Validation) error

	UpdatePassword(ctx context.Context, email, newHash string) error
	UpdateFCMToken(ctx context.Context, email, token string) error
	UpdateAvatar(ctx context.Context, email, url string) error
}
