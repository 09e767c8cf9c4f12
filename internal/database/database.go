package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	ConstraintUserEmail         = "users_email_key"
	ConstraintApplicationUnique = "application_job_applicant_key"

	uniqueViolation = "23505"
)

// Table Structure
//
// Jobs are soft deleted (deleted_at) so their applications keep a valid
// job reference. job.application_ids is a denormalised index of the
// applications pointing at the job, the application table is the source
// of truth.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(27) NOT NULL,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL,
		company VARCHAR(255),
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY(id),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS job (
		id CHAR(27) NOT NULL,
		title VARCHAR(255) NOT NULL,
		company VARCHAR(255) NOT NULL,
		location VARCHAR(255) NOT NULL,
		job_type VARCHAR(32) NOT NULL,
		salary VARCHAR(255),
		description TEXT NOT NULL,
		employer_id CHAR(27) NOT NULL REFERENCES users(id),
		application_ids TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP,
		deleted_at TIMESTAMP,
		PRIMARY KEY(id)
	)`,
	`CREATE INDEX IF NOT EXISTS job_employer_id_idx ON job (employer_id)`,
	`CREATE TABLE IF NOT EXISTS application (
		id CHAR(27) NOT NULL,
		job_id CHAR(27) NOT NULL REFERENCES job(id),
		applicant_id CHAR(27) NOT NULL REFERENCES users(id),
		resume VARCHAR(512),
		cover_letter TEXT,
		status VARCHAR(16) NOT NULL DEFAULT 'Applied',
		feedback TEXT,
		applied_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY(id),
		CONSTRAINT application_job_applicant_key UNIQUE (job_id, applicant_id)
	)`,
	`CREATE INDEX IF NOT EXISTS application_applicant_id_idx ON application (applicant_id)`,
	`CREATE TABLE IF NOT EXISTS resume_file (
		name VARCHAR(255) NOT NULL,
		content_type VARCHAR(255) NOT NULL,
		bytes BYTEA NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY(name)
	)`,
}

func GetDbConn(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// CloseDbConn closes db conn
func CloseDbConn(conn *sql.DB) {
	conn.Close()
}

// Migrate creates missing tables and indexes. Every statement is idempotent.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "migration %d failed", i)
		}
	}
	return nil
}

// IsUniqueViolation reports whether err is a postgres unique violation on
// the given constraint. An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
