package job

import (
	"context"
	"strings"
	"time"

	"github.com/internhill/jobboard/internal/apperr"
	"github.com/internhill/jobboard/internal/auth"
	"github.com/internhill/jobboard/internal/template"
	"github.com/internhill/jobboard/internal/user"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/ksuid"
)

type jobStore interface {
	SaveJob(ctx context.Context, job Job) error
	JobByID(ctx context.Context, id string) (Job, error)
	Jobs(ctx context.Context) ([]Job, error)
	JobsByEmployer(ctx context.Context, employerID string) ([]Job, error)
	UpdateJob(ctx context.Context, job Job) error
	SoftDeleteJob(ctx context.Context, id string, at time.Time) error
}

type userGetter interface {
	UserByID(ctx context.Context, id string) (user.User, error)
}

// Service owns job postings. Only the employer who created a job may
// change or delete it.
type Service struct {
	jobs     jobStore
	users    userGetter
	tmpl     *template.Template
	validate *validator.Validate
	now      func() time.Time
}

func NewService(jobs jobStore, users userGetter, tmpl *template.Template) *Service {
	return &Service{
		jobs:     jobs,
		users:    users,
		tmpl:     tmpl,
		validate: apperr.NewValidator(),
		now:      time.Now,
	}
}

func (s *Service) ListAll(ctx context.Context) ([]Job, error) {
	jobs, err := s.jobs.Jobs(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "unable to list jobs")
	}
	return s.decorateAll(jobs), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Job, error) {
	job, err := s.live(ctx, id)
	if err != nil {
		return Job{}, err
	}
	return s.decorate(job), nil
}

func (s *Service) ListMine(ctx context.Context, id auth.Identity) ([]Job, error) {
	if err := auth.Authorize(id, user.RoleEmployer); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.JobsByEmployer(ctx, id.UserID)
	if err != nil {
		return nil, apperr.Internal(err, "unable to list employer jobs")
	}
	return s.decorateAll(jobs), nil
}

// Create stores a new posting. The company shown on it always comes from
// the employer's profile.
func (s *Service) Create(ctx context.Context, id auth.Identity, rq JobRq) (Job, error) {
	if err := auth.Authorize(id, user.RoleEmployer); err != nil {
		return Job{}, err
	}
	rq = trimJobRq(rq)
	if err := s.validate.Struct(rq); err != nil {
		return Job{}, apperr.FromValidation(err)
	}
	jobType, err := ParseType(rq.Type)
	if err != nil {
		return Job{}, apperr.Validation("type must be one of: Internship, Full-time, Part-time")
	}
	employer, err := s.users.UserByID(ctx, id.UserID)
	if apperr.Is(err, apperr.KindNotFound) {
		return Job{}, apperr.NotFound("Employer not found")
	}
	if err != nil {
		return Job{}, apperr.Internal(err, "unable to look up employer")
	}
	job := Job{
		ID:          ksuid.New().String(),
		Title:       rq.Title,
		Company:     employer.CompanyName(),
		Location:    rq.Location,
		Type:        jobType,
		Salary:      rq.Salary,
		Description: rq.Description,
		Employer: Employer{
			ID:      employer.ID,
			Name:    employer.Name,
			Company: employer.Company,
		},
		ApplicationIDs: []string{},
		CreatedAt:      s.now().UTC(),
	}
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return Job{}, apperr.Internal(err, "unable to save job")
	}
	return s.decorate(job), nil
}

func (s *Service) Update(ctx context.Context, id auth.Identity, jobID string, rq JobRqUpdate) (Job, error) {
	job, err := s.owned(ctx, id, jobID)
	if err != nil {
		return Job{}, err
	}
	if err := mergeUpdate(&job, rq); err != nil {
		return Job{}, err
	}
	now := s.now().UTC()
	job.UpdatedAt = &now
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Job{}, err
		}
		return Job{}, apperr.Internal(err, "unable to update job")
	}
	return s.decorate(job), nil
}

// Delete hides the job from listings. Its applications are retained.
func (s *Service) Delete(ctx context.Context, id auth.Identity, jobID string) error {
	if _, err := s.owned(ctx, id, jobID); err != nil {
		return err
	}
	if err := s.jobs.SoftDeleteJob(ctx, jobID, s.now().UTC()); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		return apperr.Internal(err, "unable to delete job")
	}
	return nil
}

func (s *Service) live(ctx context.Context, jobID string) (Job, error) {
	job, err := s.jobs.JobByID(ctx, jobID)
	if apperr.Is(err, apperr.KindNotFound) {
		return Job{}, err
	}
	if err != nil {
		return Job{}, apperr.Internal(err, "unable to look up job")
	}
	if job.IsDeleted() {
		return Job{}, apperr.NotFound("Job not found")
	}
	return job, nil
}

func (s *Service) owned(ctx context.Context, id auth.Identity, jobID string) (Job, error) {
	if err := auth.Authorize(id, user.RoleEmployer); err != nil {
		return Job{}, err
	}
	job, err := s.live(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if !job.OwnedBy(id.UserID) {
		return Job{}, apperr.Forbidden("Not authorized")
	}
	return job, nil
}

func (s *Service) decorate(job Job) Job {
	job.DescriptionHTML = s.tmpl.MarkdownToHTML(job.Description)
	job.PostedAgo = s.tmpl.HumanTime(job.CreatedAt)
	return job
}

func (s *Service) decorateAll(jobs []Job) []Job {
	for i := range jobs {
		jobs[i] = s.decorate(jobs[i])
	}
	return jobs
}

func trimJobRq(rq JobRq) JobRq {
	rq.Title = strings.TrimSpace(rq.Title)
	rq.Location = strings.TrimSpace(rq.Location)
	rq.Type = strings.TrimSpace(rq.Type)
	rq.Salary = strings.TrimSpace(rq.Salary)
	rq.Description = strings.TrimSpace(rq.Description)
	return rq
}

func mergeUpdate(job *Job, rq JobRqUpdate) error {
	required := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"title", rq.Title, &job.Title},
		{"location", rq.Location, &job.Location},
		{"description", rq.Description, &job.Description},
	}
	for _, f := range required {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return apperr.Validation(f.name + " cannot be empty")
		}
		*f.dst = v
	}
	if rq.Type != nil {
		t, err := ParseType(strings.TrimSpace(*rq.Type))
		if err != nil {
			return apperr.Validation("type must be one of: Internship, Full-time, Part-time")
		}
		job.Type = t
	}
	if rq.Salary != nil {
		job.Salary = strings.TrimSpace(*rq.Salary)
	}
	return nil
}
