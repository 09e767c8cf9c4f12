package user

import (
	"context"
	"testing"
	"time"

	"github.com/internhill/jobboard/internal/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "name", "email", "password_hash", "role", "company", "created_at"}

func TestSaveUserDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err = NewRepository(db).SaveUser(context.Background(), User{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: RoleJobseeker})
	assert.True(t, apperr.Is(err, apperr.KindDuplicateEmail))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "Acme HR", "hr@acme.com", "hash", "employer", "Acme", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewRepository(db).SaveUser(context.Background(), User{
		ID: "u1", Name: "Acme HR", Email: "hr@acme.com", PasswordHash: "hash",
		Role: RoleEmployer, Company: "Acme", CreatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u1", "Ann", "ann@example.com", "hash", "jobseeker", nil, now))

	u, err := NewRepository(db).UserByEmail(context.Background(), "Ann@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, RoleJobseeker, u.Role)
	assert.Equal(t, "", u.Company)
	assert.Equal(t, "Ann", u.CompanyName())
}

func TestUserByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err = NewRepository(db).UserByID(context.Background(), "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("employer")
	require.NoError(t, err)
	assert.Equal(t, RoleEmployer, r)

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrUnknownRole)
}
