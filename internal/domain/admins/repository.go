package admins

import (
	"context"
	"errors"
	"time"

	"github.com/eventdesk/server/internal/auth"
)

var (
	ErrNotFound      = errors.New("admin not found")
	ErrUsernameTaken = errors.New("admin username already exists")
	ErrHasEvents     = errors.New("admin has associated events")
	ErrTokenNotFound = errors.New("refresh token not found")
)

type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	Role         auth.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateParams struct {
	ID           string
	Username     string
	PasswordHash string
	Role         auth.Role
}

// UpdateParams carries partial updates; nil fields are left unchanged.
type UpdateParams struct {
	Username     *string
	PasswordHash *string
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Admin, error)
	GetByID(ctx context.Context, id string) (*Admin, error)
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Admin, error)
	// Delete fails with ErrHasEvents while the admin still owns events.
	Delete(ctx context.Context, id string) error
	// List returns regular admin accounts, super-admins excluded.
	List(ctx context.Context) ([]Admin, error)

	// Refresh-token set operations. Each is a single atomic storage
	// write so concurrent sessions for one admin cannot lose updates.
	AddRefreshToken(ctx context.Context, adminID, tokenHash string) error
	HasRefreshToken(ctx context.Context, adminID, tokenHash string) (bool, error)
	RemoveRefreshToken(ctx context.Context, tokenHash string) error
}
