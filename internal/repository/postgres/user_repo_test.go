package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"gem-auction/internal/auctionerrors"
	model "gem-auction/internal/models"
)

var userCols = []string{"id", "email", "role", "password_hash", "created_at"}

func TestUserRepo_CreateUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	user := model.User{UserID: "u1", Email: "a@example.com", Role: model.RoleUser, PasswordHash: "h", CreatedAt: base}

	mock.ExpectExec(`INSERT INTO users \(id, email, role, password_hash, created_at\) VALUES \(\$1,\$2,\$3,\$4,\$5\)`).
		WithArgs("u1", "a@example.com", "User", "h", base).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("u1", "a@example.com", "User", "h", base).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	require.NoError(t, r.CreateUser(context.Background(), user))
	err := r.CreateUser(context.Background(), user)
	require.ErrorIs(t, err, auctionerrors.ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetUserByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE lower\(email\)=lower\(\$1\)`).
		WithArgs("A@Example.com").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u1", "a@example.com", "Admin", "h", base))
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id=\$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	u, err := r.GetUserByEmail(context.Background(), "A@Example.com")
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, u.Role)

	_, err = r.GetUser(context.Background(), "ghost")
	require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_ListAndCount(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM users ORDER BY email`).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u1", "a@example.com", "Admin", "h", base).
			AddRow("u2", "b@example.com", "User", "h", base))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	users, err := r.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	n, err := r.CountUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
