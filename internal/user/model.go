package user

import (
	"time"

	"github.com/pkg/errors"
)

// Role is closed: every user is exactly one of the values below.
type Role string

const (
	RoleJobseeker Role = "jobseeker"
	RoleEmployer  Role = "employer"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleJobseeker:
		return RoleJobseeker, nil
	case RoleEmployer:
		return RoleEmployer, nil
	}
	return "", errors.Wrapf(ErrUnknownRole, "%q", s)
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Company      string    `json:"company,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CompanyName is the name shown on the employer's postings.
func (u User) CompanyName() string {
	if u.Company != "" {
		return u.Company
	}
	return u.Name
}
