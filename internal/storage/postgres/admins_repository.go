package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventdesk/server/internal/auth"
	"github.com/eventdesk/server/internal/domain/admins"
	"github.com/jackc/pgx/v5"
)

const adminColumns = `id, username, password_hash, role, created_at, updated_at`

func (r *AdminRepository) Create(ctx context.Context, params admins.CreateParams) (*admins.Admin, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO admins (id, username, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING `+adminColumns+`
`, params.ID, params.Username, params.PasswordHash, string(params.Role))

	admin, err := scanAdmin(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, admins.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return admin, nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*admins.Admin, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+adminColumns+`
  FROM admins
 WHERE id = $1
`, id)

	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, admins.ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return admin, nil
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*admins.Admin, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+adminColumns+`
  FROM admins
 WHERE username = $1
`, username)

	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, admins.ErrNotFound
		}
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	return admin, nil
}

func (r *AdminRepository) Update(ctx context.Context, id string, params admins.UpdateParams) (*admins.Admin, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE admins
   SET username = COALESCE($2, username),
       password_hash = COALESCE($3, password_hash),
       updated_at = now()
 WHERE id = $1
RETURNING `+adminColumns+`
`, id, params.Username, params.PasswordHash)

	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, admins.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, admins.ErrUsernameTaken
		}
		return nil, fmt.Errorf("update admin: %w", err)
	}
	return admin, nil
}

func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var owned int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM admin_events WHERE admin_id = $1`, id).Scan(&owned); err != nil {
			return fmt.Errorf("count owned events: %w", err)
		}
		if owned > 0 {
			return admins.ErrHasEvents
		}

		tag, err := tx.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete admin: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return admins.ErrNotFound
		}
		return nil
	})
}

func (r *AdminRepository) List(ctx context.Context) ([]admins.Admin, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+adminColumns+`
  FROM admins
 WHERE role = 'admin'
 ORDER BY created_at
`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var out []admins.Admin
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		out = append(out, *admin)
	}
	return out, rows.Err()
}

func (r *AdminRepository) AddRefreshToken(ctx context.Context, adminID, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO admin_refresh_tokens (admin_id, token_hash)
VALUES ($1, $2)
ON CONFLICT (token_hash) DO NOTHING
`, adminID, tokenHash)
	if err != nil {
		if isForeignKeyViolation(err) {
			return admins.ErrNotFound
		}
		return fmt.Errorf("add refresh token: %w", err)
	}
	return nil
}

func (r *AdminRepository) HasRefreshToken(ctx context.Context, adminID, tokenHash string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
    SELECT 1 FROM admin_refresh_tokens
     WHERE admin_id = $1 AND token_hash = $2
)
`, adminID, tokenHash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check refresh token: %w", err)
	}
	return exists, nil
}

func (r *AdminRepository) RemoveRefreshToken(ctx context.Context, tokenHash string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admin_refresh_tokens WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("remove refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return admins.ErrTokenNotFound
	}
	return nil
}

func scanAdmin(row pgx.Row) (*admins.Admin, error) {
	var admin admins.Admin
	var role string
	if err := row.Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&role,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	admin.Role = auth.Role(role)
	return &admin, nil
}
