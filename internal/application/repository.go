package application

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/internhill/jobboard/internal/apperr"
	"github.com/internhill/jobboard/internal/database"
	"github.com/internhill/jobboard/internal/job"

	"github.com/pkg/errors"
)

const applicationSelect = `SELECT a.id, a.job_id, a.applicant_id, a.resume, a.cover_letter, a.status, a.feedback, a.applied_at, a.updated_at,
	j.title, j.company, j.location, j.job_type, j.salary, j.description, j.employer_id, j.deleted_at,
	u.name, u.email
	FROM application a
	JOIN job j ON j.id = a.job_id
	JOIN users u ON u.id = a.applicant_id`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// SaveApplication relies on the (job_id, applicant_id) unique constraint to
// reject a second application for the same job.
func (r *Repository) SaveApplication(ctx context.Context, a Application) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO application (id, job_id, applicant_id, resume, cover_letter, status, feedback, applied_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID,
		a.JobID,
		a.ApplicantID,
		sql.NullString{String: a.Resume, Valid: a.Resume != ""},
		a.CoverLetter,
		string(a.Status),
		sql.NullString{String: a.Feedback, Valid: a.Feedback != ""},
		a.AppliedAt,
		a.UpdatedAt,
	)
	if database.IsUniqueViolation(err, database.ConstraintApplicationUnique) {
		return apperr.DuplicateApplication()
	}
	return errors.Wrap(err, "unable to save application")
}

func (r *Repository) ApplicationExists(ctx context.Context, jobID, applicantID string) (bool, error) {
	var exists bool
	row := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM application WHERE job_id = $1 AND applicant_id = $2)`, jobID, applicantID)
	if err := row.Scan(&exists); err != nil {
		return false, errors.Wrap(err, "unable to check existing application")
	}
	return exists, nil
}

func (r *Repository) ApplicationByID(ctx context.Context, id string) (Application, error) {
	rows, err := r.db.QueryContext(ctx, applicationSelect+` WHERE a.id = $1`, id)
	if err != nil {
		return Application{}, errors.Wrap(err, "unable to query application")
	}
	apps, err := scanApplications(rows)
	if err != nil {
		return Application{}, err
	}
	if len(apps) == 0 {
		return Application{}, apperr.NotFound("Application not found")
	}
	return apps[0], nil
}

func (r *Repository) ApplicationsByApplicant(ctx context.Context, applicantID string) ([]Application, error) {
	rows, err := r.db.QueryContext(ctx, applicationSelect+` WHERE a.applicant_id = $1 ORDER BY a.applied_at DESC`, applicantID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to query applications by applicant")
	}
	return scanApplications(rows)
}

func (r *Repository) ApplicationsByJob(ctx context.Context, jobID string) ([]Application, error) {
	rows, err := r.db.QueryContext(ctx, applicationSelect+` WHERE a.job_id = $1 ORDER BY a.applied_at DESC`, jobID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to query applications by job")
	}
	return scanApplications(rows)
}

// ApplicationsByEmployer includes applications to jobs the employer has
// since deleted.
func (r *Repository) ApplicationsByEmployer(ctx context.Context, employerID string) ([]Application, error) {
	rows, err := r.db.QueryContext(ctx, applicationSelect+` WHERE j.employer_id = $1 ORDER BY a.applied_at DESC`, employerID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to query applications by employer")
	}
	return scanApplications(rows)
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, feedback string, at time.Time) error {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE application SET status = $1, feedback = $2, updated_at = $3 WHERE id = $4`,
		string(status),
		sql.NullString{String: feedback, Valid: feedback != ""},
		at,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "unable to update application status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "unable to read affected rows")
	}
	if n == 0 {
		return apperr.NotFound("Application not found")
	}
	return nil
}

func scanApplications(rows *sql.Rows) ([]Application, error) {
	defer rows.Close()
	apps := []Application{}
	for rows.Next() {
		a := Application{Job: &JobSummary{}, Applicant: &ApplicantSummary{}}
		var status, jobType string
		var resume, coverLetter, feedback, salary sql.NullString
		var deletedAt sql.NullTime
		err := rows.Scan(
			&a.ID,
			&a.JobID,
			&a.ApplicantID,
			&resume,
			&coverLetter,
			&status,
			&feedback,
			&a.AppliedAt,
			&a.UpdatedAt,
			&a.Job.Title,
			&a.Job.Company,
			&a.Job.Location,
			&jobType,
			&salary,
			&a.Job.Description,
			&a.Job.EmployerID,
			&deletedAt,
			&a.Applicant.Name,
			&a.Applicant.Email,
		)
		if err != nil {
			return apps, errors.Wrap(err, "unable to scan application")
		}
		a.ID = strings.TrimSpace(a.ID)
		a.JobID = strings.TrimSpace(a.JobID)
		a.ApplicantID = strings.TrimSpace(a.ApplicantID)
		a.Resume = resume.String
		a.CoverLetter = coverLetter.String
		a.Status = Status(status)
		a.Feedback = feedback.String
		a.Job.ID = a.JobID
		a.Job.Type = job.Type(jobType)
		a.Job.Salary = salary.String
		a.Job.EmployerID = strings.TrimSpace(a.Job.EmployerID)
		a.Job.Deleted = deletedAt.Valid
		a.Applicant.ID = a.ApplicantID
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return apps, errors.Wrap(err, "unable to iterate applications")
	}
	return apps, nil
}
