package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/internhill/jobboard/internal/application"
	"github.com/internhill/jobboard/internal/apperr"
	"github.com/internhill/jobboard/internal/auth"
	"github.com/internhill/jobboard/internal/config"
	"github.com/internhill/jobboard/internal/job"
	"github.com/internhill/jobboard/internal/server"
	"github.com/internhill/jobboard/internal/storage"
	"github.com/internhill/jobboard/internal/user"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	registered auth.RegisterRq
	loginErr   error
}

func (s *stubAuth) Register(_ context.Context, rq auth.RegisterRq) (auth.Session, error) {
	s.registered = rq
	return auth.Session{Token: "tk", User: user.User{ID: "u1", Name: rq.Name, Email: rq.Email, Role: user.RoleJobseeker}}, nil
}

func (s *stubAuth) Login(_ context.Context, rq auth.LoginRq) (auth.Session, error) {
	if s.loginErr != nil {
		return auth.Session{}, s.loginErr
	}
	return auth.Session{Token: "tk", User: user.User{ID: "u1", Email: rq.Email}}, nil
}

func (s *stubAuth) Me(_ context.Context, id auth.Identity) (user.User, error) {
	return user.User{ID: id.UserID, Role: id.Role}, nil
}

type stubJobs struct {
	calls []string
	err   error
}

func (s *stubJobs) record(call string) error {
	s.calls = append(s.calls, call)
	return s.err
}

func (s *stubJobs) ListAll(context.Context) ([]job.Job, error) {
	return []job.Job{{ID: "j1", Title: "Intern"}}, s.record("ListAll")
}

func (s *stubJobs) GetByID(_ context.Context, id string) (job.Job, error) {
	return job.Job{ID: id}, s.record("GetByID:" + id)
}

func (s *stubJobs) ListMine(_ context.Context, id auth.Identity) ([]job.Job, error) {
	return []job.Job{}, s.record("ListMine:" + id.UserID)
}

func (s *stubJobs) Create(_ context.Context, id auth.Identity, rq job.JobRq) (job.Job, error) {
	return job.Job{ID: "j2", Title: rq.Title, Employer: job.Employer{ID: id.UserID}}, s.record("Create")
}

func (s *stubJobs) Update(_ context.Context, _ auth.Identity, jobID string, _ job.JobRqUpdate) (job.Job, error) {
	return job.Job{ID: jobID}, s.record("Update:" + jobID)
}

func (s *stubJobs) Delete(_ context.Context, _ auth.Identity, jobID string) error {
	return s.record("Delete:" + jobID)
}

type stubApps struct {
	applyRq  application.ApplyRq
	resume   *application.Resume
	statusRq application.StatusRq
	err      error
}

func (s *stubApps) Apply(_ context.Context, id auth.Identity, rq application.ApplyRq, resume *application.Resume) (application.Application, error) {
	s.applyRq, s.resume = rq, resume
	if s.err != nil {
		return application.Application{}, s.err
	}
	return application.Application{ID: "a1", JobID: rq.JobID, ApplicantID: id.UserID, Status: application.StatusApplied}, nil
}

func (s *stubApps) ListMine(context.Context, auth.Identity) ([]application.Application, error) {
	return []application.Application{}, s.err
}

func (s *stubApps) ListForJob(_ context.Context, _ auth.Identity, jobID string) ([]application.Application, error) {
	return []application.Application{{ID: "a1", JobID: jobID}}, s.err
}

func (s *stubApps) ListForEmployer(context.Context, auth.Identity) ([]application.Application, error) {
	return []application.Application{}, s.err
}

func (s *stubApps) UpdateStatus(_ context.Context, _ auth.Identity, applicationID string, rq application.StatusRq) (application.Application, error) {
	s.statusRq = rq
	if s.err != nil {
		return application.Application{}, s.err
	}
	return application.Application{ID: applicationID, Status: application.Status(rq.Status), Feedback: rq.Feedback}, nil
}

func (s *stubApps) DownloadResume(_ context.Context, _ auth.Identity, name string) (storage.File, error) {
	if s.err != nil {
		return storage.File{}, s.err
	}
	return storage.File{Name: name, ContentType: storage.ContentTypePDF, Bytes: []byte("%PDF-1.4")}, nil
}

type testAPI struct {
	router *mux.Router
	tokens *auth.TokenService
	auth   *stubAuth
	jobs   *stubJobs
	apps   *stubApps
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cfg := config.Config{Env: "dev", MaxResumeSize: 1024, StrictOwnership: true}
	r := mux.NewRouter()
	svr := server.NewServer(cfg, r, zerolog.Nop())
	api := &testAPI{
		router: r,
		tokens: auth.NewTokenService([]byte("test-signing-key"), time.Hour),
		auth:   &stubAuth{},
		jobs:   &stubJobs{},
		apps:   &stubApps{},
	}
	RegisterRoutes(svr, api.tokens, api.auth, api.jobs, api.apps)
	return api
}

func (api *testAPI) token(t *testing.T, role user.Role) string {
	t.Helper()
	tk, err := api.tokens.Issue(auth.Identity{UserID: "user-" + role.String(), Role: role})
	require.NoError(t, err)
	return tk
}

func (api *testAPI) do(req *http.Request, tk string) *httptest.ResponseRecorder {
	if tk != "" {
		req.Header.Set("Authorization", "Bearer "+tk)
	}
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Server is running", message(t, rec))
}

func TestRegister(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(jsonRequest(http.MethodPost, "/api/auth/register", `{"name":"Sam","email":"sam@example.com","password":"secret1"}`), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Success bool      `json:"success"`
		Token   string    `json:"token"`
		User    user.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "tk", body.Token)
	assert.Equal(t, "sam@example.com", body.User.Email)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Equal(t, "Sam", api.auth.registered.Name)
}

func TestRegisterMalformedBody(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(jsonRequest(http.MethodPost, "/api/auth/register", `{"name":`), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", message(t, rec))
}

func TestLoginFailure(t *testing.T) {
	api := newTestAPI(t)
	api.auth.loginErr = apperr.InvalidCredentials()
	rec := api.do(jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"x"}`), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", message(t, rec))
}

func TestMeRequiresToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, no token", message(t, rec))

	rec = api.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, token failed", message(t, rec))

	rec = api.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), api.token(t, user.RoleEmployer))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user-employer"`)
}

func TestJobRoutes(t *testing.T) {
	api := newTestAPI(t)
	employer := api.token(t, user.RoleEmployer)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/jobs", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(httptest.NewRequest(http.MethodGet, "/api/jobs/employer/my-jobs", nil), employer)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(httptest.NewRequest(http.MethodGet, "/api/jobs/j1", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(jsonRequest(http.MethodPost, "/api/jobs", `{"title":"Intern"}`), employer)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(jsonRequest(http.MethodPut, "/api/jobs/j1", `{"title":"Senior Intern"}`), employer)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(httptest.NewRequest(http.MethodDelete, "/api/jobs/j1", nil), employer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Job deleted", message(t, rec))

	assert.Equal(t, []string{"ListAll", "ListMine:user-employer", "GetByID:j1", "Create", "Update:j1", "Delete:j1"}, api.jobs.calls)
}

func TestJobWritesRequireEmployer(t *testing.T) {
	api := newTestAPI(t)
	seeker := api.token(t, user.RoleJobseeker)

	rec := api.do(jsonRequest(http.MethodPost, "/api/jobs", `{"title":"Intern"}`), seeker)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "User role jobseeker is not authorized to access this route", message(t, rec))

	rec = api.do(httptest.NewRequest(http.MethodDelete, "/api/jobs/j1", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, api.jobs.calls)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
		msg    string
	}{
		"not found":   {apperr.NotFound("Job not found"), http.StatusNotFound, "Job not found"},
		"forbidden":   {apperr.Forbidden("Not authorized"), http.StatusForbidden, "Not authorized"},
		"validation":  {apperr.Validation("title is required"), http.StatusBadRequest, "title is required"},
		"duplicate":   {apperr.DuplicateApplication(), http.StatusBadRequest, "You have already applied for this job"},
		"internal":    {apperr.Internal(errors.New("pq: connection refused"), "unable to update job"), http.StatusInternalServerError, "Oops! An internal error has occurred"},
		"plain error": {errors.New("boom"), http.StatusInternalServerError, "Oops! An internal error has occurred"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			api := newTestAPI(t)
			api.jobs.err = tc.err
			rec := api.do(jsonRequest(http.MethodPut, "/api/jobs/j1", `{}`), api.token(t, user.RoleEmployer))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.msg, message(t, rec))
		})
	}
}

func multipartApply(t *testing.T, fields map[string]string, resume []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if resume != nil {
		fw, err := mw.CreateFormFile("resume", "Sam CV.pdf")
		require.NoError(t, err)
		_, err = fw.Write(resume)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/applications", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestApplyMultipart(t *testing.T) {
	api := newTestAPI(t)
	pdf := []byte("%PDF-1.4\n%%EOF\n")

	rec := api.do(multipartApply(t, map[string]string{"jobId": "j1", "coverLetter": "Hi"}, pdf), api.token(t, user.RoleJobseeker))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Application submitted successfully", message(t, rec))
	assert.Equal(t, application.ApplyRq{JobID: "j1", CoverLetter: "Hi"}, api.apps.applyRq)
	require.NotNil(t, api.apps.resume)
	assert.Equal(t, "Sam CV.pdf", api.apps.resume.Filename)
	assert.Equal(t, pdf, api.apps.resume.Bytes)
}

func TestApplyWithoutResume(t *testing.T) {
	api := newTestAPI(t)
	seeker := api.token(t, user.RoleJobseeker)

	rec := api.do(multipartApply(t, map[string]string{"jobId": "j1"}, nil), seeker)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, api.apps.resume)

	rec = api.do(jsonRequest(http.MethodPost, "/api/applications", `{"jobId":"j1","coverLetter":"Hello"}`), seeker)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Hello", api.apps.applyRq.CoverLetter)
}

func TestApplyResumeTooLarge(t *testing.T) {
	api := newTestAPI(t)
	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 4096)...)

	rec := api.do(multipartApply(t, map[string]string{"jobId": "j1"}, big), api.token(t, user.RoleJobseeker))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Resume must be smaller than 1.0 kB", message(t, rec))
	assert.Empty(t, api.apps.applyRq.JobID)
}

func TestApplyRequiresJobseeker(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(jsonRequest(http.MethodPost, "/api/applications", `{"jobId":"j1"}`), api.token(t, user.RoleEmployer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApplicationListRoutes(t *testing.T) {
	api := newTestAPI(t)
	employer := api.token(t, user.RoleEmployer)
	seeker := api.token(t, user.RoleJobseeker)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/applications/my-applications", nil), seeker)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(httptest.NewRequest(http.MethodGet, "/api/applications/my-applications", nil), employer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(httptest.NewRequest(http.MethodGet, "/api/applications/employer/all-applications", nil), employer)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(httptest.NewRequest(http.MethodGet, "/api/applications/job/j9", nil), employer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"jobId":"j9"`)
}

func TestUpdateApplicationStatus(t *testing.T) {
	api := newTestAPI(t)
	employer := api.token(t, user.RoleEmployer)

	rec := api.do(jsonRequest(http.MethodPut, "/api/applications/a1", `{"status":"Shortlisted","feedback":"Great fit"}`), employer)
	require.Equal(t, http.StatusOK, rec.Code)
	var app application.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &app))
	assert.Equal(t, application.StatusShortlisted, app.Status)
	assert.Equal(t, "Great fit", app.Feedback)

	api.apps.err = apperr.Validation("Invalid status")
	rec = api.do(jsonRequest(http.MethodPut, "/api/applications/a1", `{"status":"Hired"}`), employer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status", message(t, rec))
}

func TestDownloadResume(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/applications/resume/cv-1.pdf", nil), api.token(t, user.RoleEmployer))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, storage.ContentTypePDF, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="cv-1.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", rec.Body.String())

	rec = api.do(httptest.NewRequest(http.MethodGet, "/api/applications/resume/cv-1.pdf", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	api.apps.err = apperr.NotFound("Resume not found")
	rec = api.do(httptest.NewRequest(http.MethodGet, "/api/applications/resume/missing.pdf", nil), api.token(t, user.RoleJobseeker))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Resume not found", message(t, rec))
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", message(t, rec))

	rec = api.do(httptest.NewRequest(http.MethodPatch, "/api/jobs", nil), "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
