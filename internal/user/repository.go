package user

import (
	"context"
	"database/sql"
	"strings"

	"github.com/internhill/jobboard/internal/apperr"
	"github.com/internhill/jobboard/internal/database"

	"github.com/pkg/errors"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// SaveUser inserts u. The unique constraint on email backs the
// application level duplicate check.
func (r *Repository) SaveUser(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, role, company, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		string(u.Role),
		sql.NullString{String: u.Company, Valid: u.Company != ""},
		u.CreatedAt,
	)
	if database.IsUniqueViolation(err, database.ConstraintUserEmail) {
		return apperr.DuplicateEmail()
	}
	return errors.Wrap(err, "unable to save user")
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, email, password_hash, role, company, created_at FROM users WHERE email = $1`, strings.ToLower(email))
	return scanUser(row)
}

func (r *Repository) UserByID(ctx context.Context, id string) (User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, email, password_hash, role, company, created_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (User, error) {
	u := User{}
	var role string
	var company sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &company, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, apperr.NotFound("User not found")
	}
	if err != nil {
		return u, errors.Wrap(err, "unable to scan user")
	}
	u.Role, err = ParseRole(role)
	if err != nil {
		return u, err
	}
	u.ID = strings.TrimSpace(u.ID)
	u.Company = company.String
	return u, nil
}
