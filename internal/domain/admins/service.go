package admins

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventdesk/server/internal/auth"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidCredentials deliberately does not distinguish a bad
	// username from a bad password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service implements admin registration, login, token refresh and
// revocation, plus the super-admin account operations.
type Service struct {
	repo      Repository
	access    *auth.TokenManager
	refresh   *auth.TokenManager
	masterKey string
	logger    zerolog.Logger
}

func NewService(repo Repository, access, refresh *auth.TokenManager, masterKey string, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		access:    access,
		refresh:   refresh,
		masterKey: masterKey,
		logger:    logger.With().Str("component", "admins").Logger(),
	}
}

func (s *Service) Register(ctx context.Context, username, password string) (*Admin, error) {
	fields := make(map[string]string)
	if msg := validateUsername(username); msg != "" {
		fields["username"] = msg
	}
	if msg := validatePassword(password); msg != "" {
		fields["password"] = msg
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin, err := s.repo.Create(ctx, CreateParams{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", admin.Username).Msg("admin registered")
	return admin, nil
}

// EnsureSuperadmin seeds the super-admin account at startup. It is a
// no-op when the credentials are unset or the account already exists.
func (s *Service) EnsureSuperadmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("lookup superadmin: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.repo.Create(ctx, CreateParams{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         auth.RoleSuperadmin,
	})
	if errors.Is(err, ErrUsernameTaken) {
		// Another replica won the race.
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info().Str("username", username).Msg("superadmin account created")
	return nil
}

// Login verifies the password (or the emergency master key) and mints a
// token pair. The refresh token joins the admin's stored session set so
// multiple concurrent sessions stay independently revocable.
func (s *Service) Login(ctx context.Context, username, password string) (TokenPair, error) {
	admin, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("lookup admin: %w", err)
	}

	passwordOK := auth.VerifyPassword(admin.PasswordHash, password)
	masterKeyOK := auth.MasterKeyMatch(password, s.masterKey)
	if !passwordOK && !masterKeyOK {
		return TokenPair{}, ErrInvalidCredentials
	}

	accessToken, err := s.access.Generate(admin.ID, admin.Username, admin.Role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.refresh.Generate(admin.ID, "", "")
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.repo.AddRefreshToken(ctx, admin.ID, auth.HashToken(refreshToken)); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	if masterKeyOK && !passwordOK {
		s.logger.Warn().Str("username", admin.Username).Msg("master key login")
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh issues a new access token. The refresh token must verify,
// the admin must still exist, and the exact token must still be in the
// stored set. A signed but revoked token is rejected.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.refresh.Validate(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	admin, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("lookup admin: %w", err)
	}

	stored, err := s.repo.HasRefreshToken(ctx, admin.ID, auth.HashToken(refreshToken))
	if err != nil {
		return "", fmt.Errorf("check refresh token: %w", err)
	}
	if !stored {
		return "", ErrInvalidRefreshToken
	}

	accessToken, err := s.access.Generate(admin.ID, admin.Username, admin.Role)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return accessToken, nil
}

// Logout removes the refresh token from whichever admin holds it.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	err := s.repo.RemoveRefreshToken(ctx, auth.HashToken(refreshToken))
	if errors.Is(err, ErrTokenNotFound) {
		return ErrInvalidRefreshToken
	}
	return err
}

func (s *Service) GetByID(ctx context.Context, id string) (*Admin, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all regular admins for super-admin oversight.
func (s *Service) List(ctx context.Context) ([]Admin, error) {
	return s.repo.List(ctx)
}

// UpdateCredentials changes an admin's username and/or password on the
// super-admin path. Provided values go through the same format rules as
// registration.
func (s *Service) UpdateCredentials(ctx context.Context, id string, username, password *string) (*Admin, error) {
	if username == nil && password == nil {
		return nil, &ValidationError{Fields: map[string]string{"request": "No updates provided"}}
	}

	fields := make(map[string]string)
	params := UpdateParams{}

	if username != nil {
		if msg := validateUsername(*username); msg != "" {
			fields["username"] = msg
		}
		params.Username = username
	}
	if password != nil {
		if msg := validatePassword(*password); msg != "" {
			fields["password"] = msg
		} else {
			hash, err := auth.HashPassword(*password)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			params.PasswordHash = &hash
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return s.repo.Update(ctx, id, params)
}

// Delete removes an admin account. Admins that still own events are
// refused (ErrHasEvents) on every path, the super-admin one included.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
