package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, real_name, role, password_hash, secret_key, is_deleted, created_at`

func (r *UserRepository) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	const stmt = `
INSERT INTO users (real_name, role, password_hash, secret_key, is_deleted, created_at)
VALUES ($1, $2, $3, $4, FALSE, $5)
RETURNING id`

	err := r.queryRow(ctx, stmt, u.RealName, u.Role, u.PasswordHash, u.SecretKey, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", classify(err))
	}
	return u, nil
}

// GetUser returns a user including soft-deleted ones; callers that care about
// deletion check IsDeleted themselves (login and token checks must reject,
// admin reads may still display history).
func (r *UserRepository) GetUser(ctx context.Context, id int64) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.queryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", classify(err))
	}
	return u, nil
}

func (r *UserRepository) ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, error) {
	query := `
SELECT ` + userColumns + `
FROM users
WHERE is_deleted = FALSE
ORDER BY id ASC
LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, pageSize, pageOffset(page, pageSize))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", classify(err))
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate users: %w", classify(rows.Err()))
	}
	return users, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (domain.User, error) {
	stmt := `
UPDATE users
SET real_name = COALESCE($2, real_name),
    role = COALESCE($3, role),
    password_hash = COALESCE($4, password_hash)
WHERE id = $1 AND is_deleted = FALSE
RETURNING ` + userColumns

	u, err := scanUser(r.queryRow(ctx, stmt, id, update.RealName, update.Role, update.PasswordHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("update user: %w", classify(err))
	}
	return u, nil
}

func (r *UserRepository) UpdateSecretKey(ctx context.Context, id int64, secretKey string) error {
	const stmt = `UPDATE users SET secret_key = $2 WHERE id = $1 AND is_deleted = FALSE`

	tag, err := r.exec(ctx, stmt, id, secretKey)
	if err != nil {
		return fmt.Errorf("update secret key: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SoftDeleteUser marks the account deleted; tickets keep referencing it for
// history, so rows are never removed.
func (r *UserRepository) SoftDeleteUser(ctx context.Context, id int64) error {
	const stmt = `UPDATE users SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.RealName, &u.Role, &u.PasswordHash, &u.SecretKey, &u.IsDeleted, &u.CreatedAt)
	return u, err
}

func (r *UserRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *UserRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
