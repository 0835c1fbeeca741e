package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/pkg/util/errorutil"
)

// UserRepository defines persistence access for user records. Every read
// excludes soft-deleted rows unless the caller explicitly asks for them.
// Implementations return errorutil typed errors and never swallow failures.
type UserRepository interface {
	Insert(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string, includeDeleted bool) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, skip, limit int) ([]domain.User, error)
	ListAll(ctx context.Context, max int) ([]domain.User, error)
	MarkDeleted(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (domain.UserStats, error)
}

const userColumns = `id, username, email, first_name, last_name, bio, password_hash, status, created_at, updated_at`

type userRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewUserRepository returns a Postgres-backed implementation. Uniqueness of
// username and email among non-deleted rows is enforced by partial unique
// indexes, so concurrent inserts cannot both succeed.
func NewUserRepository(pool *pgxpool.Pool, queryTimeout time.Duration) UserRepository {
	return &userRepository{pool: pool, timeout: queryTimeout}
}

func (r *userRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *userRepository) Insert(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const query = `
        INSERT INTO users (id, username, email, first_name, last_name, bio, password_hash, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.PasswordHash,
		user.Status,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return mapStoreError(err, user.ID)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const query = `
        UPDATE users SET username=$1, email=$2, first_name=$3, last_name=$4, bio=$5,
            password_hash=$6, status=$7, updated_at=NOW()
        WHERE id=$8 AND status <> 'deleted'
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.PasswordHash,
		user.Status,
		user.ID,
	).Scan(&user.UpdatedAt)
	return mapStoreError(err, user.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	if !includeDeleted {
		query += ` AND status <> 'deleted'`
	}
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username=$1 AND status <> 'deleted'`
	return r.fetchSingle(ctx, query, username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1 AND status <> 'deleted'`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Bio,
		&user.PasswordHash,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, mapStoreError(err, "")
	}
	return &user, nil
}

// List returns non-deleted users in creation order. Out-of-range offsets
// yield an empty slice, not an error.
func (r *userRepository) List(ctx context.Context, skip, limit int) ([]domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const query = `
        SELECT ` + userColumns + `
        FROM users WHERE status <> 'deleted'
        ORDER BY created_at ASC, id ASC
        LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, skip)
	if err != nil {
		return nil, mapStoreError(err, "")
	}
	defer rows.Close()
	return scanUsers(rows)
}

// ListAll returns up to max non-deleted users for bulk export.
func (r *userRepository) ListAll(ctx context.Context, max int) ([]domain.User, error) {
	return r.List(ctx, 0, max)
}

// MarkDeleted flips the status tombstone with a conditional write so a
// racing delete cannot be applied twice.
func (r *userRepository) MarkDeleted(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const query = `UPDATE users SET status='deleted', updated_at=NOW() WHERE id=$1 AND status <> 'deleted'`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return mapStoreError(err, id)
	}
	if cmd.RowsAffected() == 0 {
		const probe = `SELECT status FROM users WHERE id=$1`
		var status domain.UserStatus
		if err := r.pool.QueryRow(ctx, probe, id).Scan(&status); err != nil {
			return mapStoreError(err, id)
		}
		return errorutil.NewAlreadyDeleted("user", id)
	}
	return nil
}

func (r *userRepository) CountByStatus(ctx context.Context) (domain.UserStats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const query = `SELECT status, COUNT(*) FROM users GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return domain.UserStats{}, mapStoreError(err, "")
	}
	defer rows.Close()

	var stats domain.UserStats
	for rows.Next() {
		var status domain.UserStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return domain.UserStats{}, mapStoreError(err, "")
		}
		stats.Total += count
		switch status {
		case domain.UserStatusActive:
			stats.Active = count
		case domain.UserStatusSuspended:
			stats.Suspended = count
		case domain.UserStatusDeleted:
			stats.Deleted = count
		}
	}
	if err := rows.Err(); err != nil {
		return domain.UserStats{}, mapStoreError(err, "")
	}
	return stats, nil
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	result := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.Bio,
			&user.PasswordHash,
			&user.Status,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, mapStoreError(err, "")
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreError(err, "")
	}
	return result, nil
}

// mapStoreError translates driver errors into the shared taxonomy. Unique
// index violations become Conflict naming the colliding field.
func mapStoreError(err error, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errorutil.NewNotFound("user", id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_username_active_idx":
			return errorutil.NewConflict("username already exists", map[string]any{"field": "username"})
		case "users_email_active_idx":
			return errorutil.NewConflict("email already exists", map[string]any{"field": "email"})
		}
		return errorutil.NewConflict("duplicate value", map[string]any{"constraint": pgErr.ConstraintName})
	}
	return errorutil.ToDomainError(err)
}
