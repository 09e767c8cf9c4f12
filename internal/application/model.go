package application

import (
	"time"

	"github.com/internhill/jobboard/internal/job"

	"github.com/pkg/errors"
)

type Status string

// Applied is the initial status, Accepted and Rejected are terminal. Any
// status may be set from any other.
const (
	StatusApplied     Status = "Applied"
	StatusReviewing   Status = "Reviewing"
	StatusShortlisted Status = "Shortlisted"
	StatusAccepted    Status = "Accepted"
	StatusRejected    Status = "Rejected"
)

var ErrUnknownStatus = errors.New("unknown application status")

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusApplied, StatusReviewing, StatusShortlisted, StatusAccepted, StatusRejected:
		return Status(s), nil
	}
	return "", errors.Wrapf(ErrUnknownStatus, "%q", s)
}

func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

type JobSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Type        job.Type `json:"type"`
	Salary      string   `json:"salary,omitempty"`
	Description string   `json:"description"`
	EmployerID  string   `json:"employerId"`
	Deleted     bool     `json:"deleted,omitempty"`
}

type ApplicantSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"jobId"`
	ApplicantID string            `json:"applicantId"`
	Resume      string            `json:"resume,omitempty"`
	CoverLetter string            `json:"coverLetter"`
	Status      Status            `json:"status"`
	Feedback    string            `json:"feedback,omitempty"`
	AppliedAt   time.Time         `json:"appliedAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Job         *JobSummary       `json:"job,omitempty"`
	Applicant   *ApplicantSummary `json:"applicant,omitempty"`
}

func summarize(j job.Job) *JobSummary {
	return &JobSummary{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		Type:        j.Type,
		Salary:      j.Salary,
		Description: j.Description,
		EmployerID:  j.Employer.ID,
		Deleted:     j.IsDeleted(),
	}
}

type ApplyRq struct {
	JobID       string `json:"jobId" validate:"required"`
	CoverLetter string `json:"coverLetter" validate:"max=10000"`
}

// Resume is an uploaded file as received from the client.
type Resume struct {
	Filename string
	Bytes    []byte
}

type StatusRq struct {
	Status   string `json:"status" validate:"required"`
	Feedback string `json:"feedback" validate:"max=10000"`
}
