package job

import (
	"time"

	"github.com/pkg/errors"
)

type Type string

const (
	TypeInternship Type = "Internship"
	TypeFullTime   Type = "Full-time"
	TypePartTime   Type = "Part-time"
)

var ErrUnknownType = errors.New("unknown job type")

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeInternship:
		return TypeInternship, nil
	case TypeFullTime:
		return TypeFullTime, nil
	case TypePartTime:
		return TypePartTime, nil
	}
	return "", errors.Wrapf(ErrUnknownType, "%q", s)
}

// Employer is the public summary of the user owning a job.
type Employer struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
}

type Job struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	Location        string     `json:"location"`
	Type            Type       `json:"type"`
	Salary          string     `json:"salary,omitempty"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"descriptionHtml,omitempty"`
	Employer        Employer   `json:"employer"`
	ApplicationIDs  []string   `json:"applications"`
	CreatedAt       time.Time  `json:"createdAt"`
	PostedAgo       string     `json:"postedAgo,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty"`
}

func (j Job) IsDeleted() bool {
	return j.DeletedAt != nil
}

// OwnedBy reports whether employerID created the job.
func (j Job) OwnedBy(employerID string) bool {
	return j.Employer.ID == employerID
}

type JobRq struct {
	Title       string `json:"title" validate:"required,max=255"`
	Location    string `json:"location" validate:"required,max=255"`
	Type        string `json:"type" validate:"required"`
	Salary      string `json:"salary" validate:"max=255"`
	Description string `json:"description" validate:"required"`
}

// JobRqUpdate is a partial update, nil fields are left untouched.
type JobRqUpdate struct {
	Title       *string `json:"title"`
	Location    *string `json:"location"`
	Type        *string `json:"type"`
	Salary      *string `json:"salary"`
	Description *string `json:"description"`
}
