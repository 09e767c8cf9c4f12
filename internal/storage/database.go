package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// DBStore keeps resumes in the resume_file table.
type DBStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewDBStore(db *sql.DB) *DBStore {
	return &DBStore{db: db, now: time.Now}
}

func (s *DBStore) Save(ctx context.Context, f File) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO resume_file (name, content_type, bytes, created_at) VALUES ($1, $2, $3, $4)`,
		f.Name,
		f.ContentType,
		f.Bytes,
		s.now().UTC(),
	)
	return errors.Wrapf(err, "unable to save %s", f.Name)
}

func (s *DBStore) Open(ctx context.Context, name string) (File, error) {
	f := File{Name: name}
	row := s.db.QueryRowContext(ctx, `SELECT content_type, bytes FROM resume_file WHERE name = $1`, name)
	err := row.Scan(&f.ContentType, &f.Bytes)
	if err == sql.ErrNoRows {
		return File{}, ErrNotFound
	}
	if err != nil {
		return File{}, errors.Wrapf(err, "unable to read %s", name)
	}
	return f, nil
}

func (s *DBStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM resume_file WHERE name = $1`, name)
	if err != nil {
		return errors.Wrapf(err, "unable to delete %s", name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "unable to read affected rows")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
