package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/internhill/jobboard/internal/application"
	"github.com/internhill/jobboard/internal/apperr"
	"github.com/internhill/jobboard/internal/auth"
	"github.com/internhill/jobboard/internal/job"
	"github.com/internhill/jobboard/internal/middleware"
	"github.com/internhill/jobboard/internal/server"
	"github.com/internhill/jobboard/internal/storage"
	"github.com/internhill/jobboard/internal/user"
)

type authService interface {
	Register(ctx context.Context, rq auth.RegisterRq) (auth.Session, error)
	Login(ctx context.Context, rq auth.LoginRq) (auth.Session, error)
	Me(ctx context.Context, id auth.Identity) (user.User, error)
}

type jobService interface {
	ListAll(ctx context.Context) ([]job.Job, error)
	GetByID(ctx context.Context, id string) (job.Job, error)
	ListMine(ctx context.Context, id auth.Identity) ([]job.Job, error)
	Create(ctx context.Context, id auth.Identity, rq job.JobRq) (job.Job, error)
	Update(ctx context.Context, id auth.Identity, jobID string, rq job.JobRqUpdate) (job.Job, error)
	Delete(ctx context.Context, id auth.Identity, jobID string) error
}

type applicationService interface {
	Apply(ctx context.Context, id auth.Identity, rq application.ApplyRq, resume *application.Resume) (application.Application, error)
	ListMine(ctx context.Context, id auth.Identity) ([]application.Application, error)
	ListForJob(ctx context.Context, id auth.Identity, jobID string) ([]application.Application, error)
	ListForEmployer(ctx context.Context, id auth.Identity) ([]application.Application, error)
	UpdateStatus(ctx context.Context, id auth.Identity, applicationID string, rq application.StatusRq) (application.Application, error)
	DownloadResume(ctx context.Context, id auth.Identity, name string) (storage.File, error)
}

func HealthHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.JSON(w, http.StatusOK, map[string]string{"message": "Server is running"})
	}
}

// decodeJSON reads the request body into dst. Malformed bodies are a
// validation error.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

// identity is set by AuthenticatedMiddleware on every protected route.
func identity(r *http.Request) auth.Identity {
	id, _ := middleware.IdentityFromContext(r.Context())
	return id
}
