package application

import (
	"context"
	"strings"
	"time"

	"github.com/internhill/jobboard/internal/apperr"
	"github.com/internhill/jobboard/internal/auth"
	"github.com/internhill/jobboard/internal/job"
	"github.com/internhill/jobboard/internal/storage"
	"github.com/internhill/jobboard/internal/user"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
)

type applicationStore interface {
	SaveApplication(ctx context.Context, a Application) error
	ApplicationExists(ctx context.Context, jobID, applicantID string) (bool, error)
	ApplicationByID(ctx context.Context, id string) (Application, error)
	ApplicationsByApplicant(ctx context.Context, applicantID string) ([]Application, error)
	ApplicationsByJob(ctx context.Context, jobID string) ([]Application, error)
	ApplicationsByEmployer(ctx context.Context, employerID string) ([]Application, error)
	UpdateStatus(ctx context.Context, id string, status Status, feedback string, at time.Time) error
}

type jobStore interface {
	JobByID(ctx context.Context, id string) (job.Job, error)
	AppendApplication(ctx context.Context, jobID, applicationID string) error
}

type Options struct {
	// StrictOwnership restricts listing and updating applications to the
	// employer who owns the job.
	StrictOwnership bool
}

type Service struct {
	apps     applicationStore
	jobs     jobStore
	files    storage.Store
	log      zerolog.Logger
	opts     Options
	validate *validator.Validate
	now      func() time.Time
}

func NewService(apps applicationStore, jobs jobStore, files storage.Store, log zerolog.Logger, opts Options) *Service {
	return &Service{
		apps:     apps,
		jobs:     jobs,
		files:    files,
		log:      log,
		opts:     opts,
		validate: apperr.NewValidator(),
		now:      time.Now,
	}
}

// Apply creates an application for the calling jobseeker. The resume is
// optional. Adding the application to the job's list happens after the
// insert and its failure is only logged.
func (s *Service) Apply(ctx context.Context, id auth.Identity, rq ApplyRq, resume *Resume) (Application, error) {
	if err := auth.Authorize(id, user.RoleJobseeker); err != nil {
		return Application{}, err
	}
	rq.JobID = strings.TrimSpace(rq.JobID)
	rq.CoverLetter = strings.TrimSpace(rq.CoverLetter)
	if err := s.validate.Struct(rq); err != nil {
		return Application{}, apperr.FromValidation(err)
	}
	j, err := s.jobs.JobByID(ctx, rq.JobID)
	if apperr.Is(err, apperr.KindNotFound) {
		return Application{}, apperr.NotFound("Job not found")
	}
	if err != nil {
		return Application{}, apperr.Internal(err, "unable to look up job")
	}
	if j.IsDeleted() {
		return Application{}, apperr.NotFound("Job not found")
	}
	exists, err := s.apps.ApplicationExists(ctx, j.ID, id.UserID)
	if err != nil {
		return Application{}, apperr.Internal(err, "unable to check existing application")
	}
	if exists {
		return Application{}, apperr.DuplicateApplication()
	}

	var file storage.File
	if resume != nil && len(resume.Bytes) > 0 {
		contentType, ext, err := storage.DetectResume(resume.Bytes)
		if err != nil {
			s.log.Info().Err(err).Str("filename", resume.Filename).Msg("rejected resume upload")
			return Application{}, apperr.Validation("Resume must be a PDF, DOC or DOCX file")
		}
		file = storage.File{
			Name:        storage.NewName(resume.Filename, ext),
			ContentType: contentType,
			Bytes:       resume.Bytes,
		}
		if err := s.files.Save(ctx, file); err != nil {
			return Application{}, apperr.Internal(err, "unable to store resume")
		}
	}

	now := s.now().UTC()
	a := Application{
		ID:          ksuid.New().String(),
		JobID:       j.ID,
		ApplicantID: id.UserID,
		Resume:      file.Name,
		CoverLetter: rq.CoverLetter,
		Status:      StatusApplied,
		AppliedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.apps.SaveApplication(ctx, a); err != nil {
		s.discard(ctx, file.Name)
		if apperr.Is(err, apperr.KindDuplicateApplication) {
			return Application{}, err
		}
		return Application{}, apperr.Internal(err, "unable to save application")
	}
	if err := s.jobs.AppendApplication(ctx, j.ID, a.ID); err != nil {
		s.log.Warn().Err(err).Str("job_id", j.ID).Str("application_id", a.ID).Msg("unable to index application on job")
	}
	a.Job = summarize(j)
	return a, nil
}

func (s *Service) discard(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.files.Delete(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Error().Err(err).Str("resume", name).Msg("unable to remove orphaned resume")
	}
}

// ListMine returns the caller's applications with a summary of each job.
func (s *Service) ListMine(ctx context.Context, id auth.Identity) ([]Application, error) {
	if err := auth.Authorize(id, user.RoleJobseeker); err != nil {
		return nil, err
	}
	apps, err := s.apps.ApplicationsByApplicant(ctx, id.UserID)
	if err != nil {
		return nil, apperr.Internal(err, "unable to list applications")
	}
	for i := range apps {
		apps[i].Applicant = nil
	}
	return apps, nil
}

func (s *Service) ListForJob(ctx context.Context, id auth.Identity, jobID string) ([]Application, error) {
	if err := auth.Authorize(id, user.RoleEmployer); err != nil {
		return nil, err
	}
	if s.opts.StrictOwnership {
		j, err := s.jobs.JobByID(ctx, jobID)
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		if err != nil {
			return nil, apperr.Internal(err, "unable to look up job")
		}
		if !j.OwnedBy(id.UserID) {
			return nil, apperr.Forbidden("Not authorized")
		}
	}
	apps, err := s.apps.ApplicationsByJob(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal(err, "unable to list applications for job")
	}
	return apps, nil
}

// ListForEmployer returns applications to every job the caller posted,
// deleted jobs included.
func (s *Service) ListForEmployer(ctx context.Context, id auth.Identity) ([]Application, error) {
	if err := auth.Authorize(id, user.RoleEmployer); err != nil {
		return nil, err
	}
	apps, err := s.apps.ApplicationsByEmployer(ctx, id.UserID)
	if err != nil {
		return nil, apperr.Internal(err, "unable to list employer applications")
	}
	return apps, nil
}

// UpdateStatus sets the status and replaces the feedback.
func (s *Service) UpdateStatus(ctx context.Context, id auth.Identity, applicationID string, rq StatusRq) (Application, error) {
	if err := auth.Authorize(id, user.RoleEmployer); err != nil {
		return Application{}, err
	}
	if err := s.validate.Struct(rq); err != nil {
		return Application{}, apperr.FromValidation(err)
	}
	status, err := ParseStatus(strings.TrimSpace(rq.Status))
	if err != nil {
		return Application{}, apperr.Validation("Invalid status")
	}
	a, err := s.apps.ApplicationByID(ctx, applicationID)
	if apperr.Is(err, apperr.KindNotFound) {
		return Application{}, err
	}
	if err != nil {
		return Application{}, apperr.Internal(err, "unable to look up application")
	}
	if s.opts.StrictOwnership && a.Job != nil && a.Job.EmployerID != id.UserID {
		return Application{}, apperr.Forbidden("Not authorized")
	}
	feedback := strings.TrimSpace(rq.Feedback)
	now := s.now().UTC()
	if err := s.apps.UpdateStatus(ctx, a.ID, status, feedback, now); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Application{}, err
		}
		return Application{}, apperr.Internal(err, "unable to update application")
	}
	if status.IsTerminal() && status != a.Status {
		s.log.Info().Str("application_id", a.ID).Str("status", string(status)).Msg("application decided")
	}
	a.Status = status
	a.Feedback = feedback
	a.UpdatedAt = now
	return a, nil
}

// DownloadResume is open to any signed in user.
func (s *Service) DownloadResume(ctx context.Context, id auth.Identity, name string) (storage.File, error) {
	if err := auth.Authorize(id, user.RoleJobseeker, user.RoleEmployer); err != nil {
		return storage.File{}, err
	}
	if !storage.ValidName(name) {
		return storage.File{}, apperr.NotFound("Resume not found")
	}
	f, err := s.files.Open(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.File{}, apperr.NotFound("Resume not found")
	}
	if err != nil {
		return storage.File{}, apperr.Internal(err, "unable to read resume")
	}
	return f, nil
}
