package handler

import (
	"net/http"

	"github.com/internhill/jobboard/internal/auth"
	"github.com/internhill/jobboard/internal/middleware"
	"github.com/internhill/jobboard/internal/server"
	"github.com/internhill/jobboard/internal/user"
)

// RegisterRoutes mounts the whole API under /api. Literal paths are
// registered before the {id} routes they would otherwise be shadowed by.
func RegisterRoutes(svr server.Server, tokens *auth.TokenService, authSvc authService, jobSvc jobService, appSvc applicationService) {
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.AuthenticatedMiddleware(tokens, svr, next)
	}
	as := func(next http.HandlerFunc, roles ...user.Role) http.HandlerFunc {
		return authed(middleware.RoleMiddleware(svr, next, roles...))
	}

	svr.RegisterRoute("/api/health", HealthHandler(svr), []string{http.MethodGet})

	svr.RegisterRoute("/api/auth/register", RegisterHandler(svr, authSvc), []string{http.MethodPost})
	svr.RegisterRoute("/api/auth/login", LoginHandler(svr, authSvc), []string{http.MethodPost})
	svr.RegisterRoute("/api/auth/me", authed(MeHandler(svr, authSvc)), []string{http.MethodGet})

	svr.RegisterRoute("/api/jobs", ListJobsHandler(svr, jobSvc), []string{http.MethodGet})
	svr.RegisterRoute("/api/jobs", as(CreateJobHandler(svr, jobSvc), user.RoleEmployer), []string{http.MethodPost})
	svr.RegisterRoute("/api/jobs/employer/my-jobs", as(MyJobsHandler(svr, jobSvc), user.RoleEmployer), []string{http.MethodGet})
	svr.RegisterRoute("/api/jobs/{id}", GetJobHandler(svr, jobSvc), []string{http.MethodGet})
	svr.RegisterRoute("/api/jobs/{id}", as(UpdateJobHandler(svr, jobSvc), user.RoleEmployer), []string{http.MethodPut})
	svr.RegisterRoute("/api/jobs/{id}", as(DeleteJobHandler(svr, jobSvc), user.RoleEmployer), []string{http.MethodDelete})

	svr.RegisterRoute("/api/applications", as(ApplyHandler(svr, appSvc), user.RoleJobseeker), []string{http.MethodPost})
	svr.RegisterRoute("/api/applications/my-applications", as(MyApplicationsHandler(svr, appSvc), user.RoleJobseeker), []string{http.MethodGet})
	svr.RegisterRoute("/api/applications/employer/all-applications", as(EmployerApplicationsHandler(svr, appSvc), user.RoleEmployer), []string{http.MethodGet})
	svr.RegisterRoute("/api/applications/job/{jobId}", as(JobApplicationsHandler(svr, appSvc), user.RoleEmployer), []string{http.MethodGet})
	svr.RegisterRoute("/api/applications/resume/{filename}", authed(DownloadResumeHandler(svr, appSvc)), []string{http.MethodGet})
	svr.RegisterRoute("/api/applications/{id}", as(UpdateApplicationStatusHandler(svr, appSvc), user.RoleEmployer), []string{http.MethodPut})
}
