package postgres

import (
	"context"
	"database/sql"

	"gifstore/internal/model"
	"gifstore/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, email, fullname, password_hash, created_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.Fullname, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Create inserts a user; a taken email surfaces as repository.ErrConflict.
func (r *UserPostgres) Create(ctx context.Context, user *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, fullname, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, q,
		user.ID,
		user.Email,
		user.Fullname,
		user.PasswordHash,
		user.CreatedAt,
	))
}

// FindByEmail compares emails case-insensitively.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *UserPostgres) UpdateFullname(ctx context.Context, id, fullname string) error {
	const q = `UPDATE users SET fullname = $2 WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, q, id, fullname))
}

func (r *UserPostgres) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	const q = `UPDATE users SET password_hash = $2 WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, q, id, hash))
}
