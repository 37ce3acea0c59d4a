package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gem-auction/internal/auctionerrors"
	model "gem-auction/internal/models"
	"gem-auction/internal/repository"
)

const userColumns = `id, email, role, password_hash, created_at`

// UserRepo implements repository.UserDB on PostgreSQL.
type UserRepo struct{ db *DB }

var _ repository.UserDB = (*UserRepo)(nil)

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

func scanUser(row pgx.Row) (model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.UserID, &u.Email, &role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// CreateUser inserts a user; a case-insensitive unique index guards the email
func (r *UserRepo) CreateUser(ctx context.Context, user model.User) error {
	const ins = `INSERT INTO users (` + userColumns + `) VALUES ($1,$2,$3,$4,$5)`
	_, err := r.db.Pool.Exec(ctx, ins, user.UserID, user.Email, string(user.Role), user.PasswordHash, user.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("create user %s: %w", user.Email, auctionerrors.ErrEmailTaken)
	}
	return err
}

func (r *UserRepo) getOne(ctx context.Context, query, key string) (model.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, fmt.Errorf("get user %s: %w", key, auctionerrors.ErrUserNotFound)
	}
	return u, err
}

// GetUser returns a user by id
func (r *UserRepo) GetUser(ctx context.Context, userID string) (model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
}

// GetUserByEmail returns a user by case-insensitive email
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1)`, email)
}

// ListUsers returns all users ordered by email
func (r *UserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CountUsers returns the number of registered users
func (r *UserRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
