package job

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/internhill/jobboard/internal/apperr"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const jobColumns = `j.id, j.title, j.company, j.location, j.job_type, j.salary, j.description, j.employer_id, u.name, u.company, j.application_ids, j.created_at, j.updated_at, j.deleted_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) SaveJob(ctx context.Context, job Job) error {
	applicationIDs := job.ApplicationIDs
	if applicationIDs == nil {
		applicationIDs = []string{}
	}
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO job (id, title, company, location, job_type, salary, description, employer_id, application_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID,
		job.Title,
		job.Company,
		job.Location,
		string(job.Type),
		sql.NullString{String: job.Salary, Valid: job.Salary != ""},
		job.Description,
		job.Employer.ID,
		pq.Array(applicationIDs),
		job.CreatedAt,
	)
	return errors.Wrap(err, "unable to save job")
}

// JobByID returns the job whether or not it has been deleted.
func (r *Repository) JobByID(ctx context.Context, id string) (Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM job j LEFT JOIN users u ON u.id = j.employer_id WHERE j.id = $1`, id)
	if err != nil {
		return Job{}, errors.Wrap(err, "unable to query job")
	}
	jobs, err := scanJobs(rows)
	if err != nil {
		return Job{}, err
	}
	if len(jobs) == 0 {
		return Job{}, apperr.NotFound("Job not found")
	}
	return jobs[0], nil
}

func (r *Repository) Jobs(ctx context.Context) ([]Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM job j LEFT JOIN users u ON u.id = j.employer_id WHERE j.deleted_at IS NULL ORDER BY j.created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "unable to query jobs")
	}
	return scanJobs(rows)
}

func (r *Repository) JobsByEmployer(ctx context.Context, employerID string) ([]Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM job j LEFT JOIN users u ON u.id = j.employer_id WHERE j.employer_id = $1 AND j.deleted_at IS NULL ORDER BY j.created_at DESC`, employerID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to query jobs by employer")
	}
	return scanJobs(rows)
}

func (r *Repository) UpdateJob(ctx context.Context, job Job) error {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE job SET title = $1, location = $2, job_type = $3, salary = $4, description = $5, updated_at = $6 WHERE id = $7 AND deleted_at IS NULL`,
		job.Title,
		job.Location,
		string(job.Type),
		sql.NullString{String: job.Salary, Valid: job.Salary != ""},
		job.Description,
		job.UpdatedAt,
		job.ID,
	)
	if err != nil {
		return errors.Wrap(err, "unable to update job")
	}
	return expectAffected(res)
}

// SoftDeleteJob marks the job deleted. Applications keep pointing at it.
func (r *Repository) SoftDeleteJob(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE job SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, at, id)
	if err != nil {
		return errors.Wrap(err, "unable to delete job")
	}
	return expectAffected(res)
}

// AppendApplication adds applicationID to the job's denormalised list.
func (r *Repository) AppendApplication(ctx context.Context, jobID, applicationID string) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE job SET application_ids = array_append(application_ids, $1) WHERE id = $2 AND NOT ($1 = ANY(application_ids))`,
		applicationID,
		jobID,
	)
	return errors.Wrap(err, "unable to append application to job")
}

// ReindexApplications rebuilds application_ids of every job from the
// application table and returns the number of jobs touched.
func (r *Repository) ReindexApplications(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE job j SET application_ids = COALESCE(
			(SELECT array_agg(a.id ORDER BY a.applied_at) FROM application a WHERE a.job_id = j.id),
			'{}'
		)`,
	)
	if err != nil {
		return 0, errors.Wrap(err, "unable to reindex job applications")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "unable to read affected rows")
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "unable to read affected rows")
	}
	if n == 0 {
		return apperr.NotFound("Job not found")
	}
	return nil
}

func scanJobs(rows *sql.Rows) ([]Job, error) {
	defer rows.Close()
	jobs := []Job{}
	for rows.Next() {
		job := Job{}
		var jobType string
		var salary, employerName, employerCompany sql.NullString
		var applicationIDs pq.StringArray
		var updatedAt, deletedAt sql.NullTime
		err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Company,
			&job.Location,
			&jobType,
			&salary,
			&job.Description,
			&job.Employer.ID,
			&employerName,
			&employerCompany,
			&applicationIDs,
			&job.CreatedAt,
			&updatedAt,
			&deletedAt,
		)
		if err != nil {
			return jobs, errors.Wrap(err, "unable to scan job")
		}
		job.ID = strings.TrimSpace(job.ID)
		job.Employer.ID = strings.TrimSpace(job.Employer.ID)
		job.Type = Type(jobType)
		job.Salary = salary.String
		job.Employer.Name = employerName.String
		job.Employer.Company = employerCompany.String
		job.ApplicationIDs = []string(applicationIDs)
		if job.ApplicationIDs == nil {
			job.ApplicationIDs = []string{}
		}
		if updatedAt.Valid {
			job.UpdatedAt = &updatedAt.Time
		}
		if deletedAt.Valid {
			job.DeletedAt = &deletedAt.Time
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return jobs, errors.Wrap(err, "unable to iterate jobs")
	}
	return jobs, nil
}
