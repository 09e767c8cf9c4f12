package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/internhill/jobboard/internal/apperr"
	"github.com/internhill/jobboard/internal/config"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestServer(buf *bytes.Buffer) Server {
	cfg := config.Config{Env: "dev", CORSOrigins: []string{"http://localhost:5173"}}
	return NewServer(cfg, mux.NewRouter(), zerolog.New(buf))
}

func TestErrorHidesInternalCause(t *testing.T) {
	buf := &bytes.Buffer{}
	svr := newTestServer(buf)

	rec := httptest.NewRecorder()
	svr.Error(rec, apperr.Internal(errors.New("pq: password authentication failed"), "unable to save job"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Oops! An internal error has occurred"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "pq: password authentication failed")

	buf.Reset()
	rec = httptest.NewRecorder()
	svr.Error(rec, apperr.NotFound("Job not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Job not found"}`, rec.Body.String())
	assert.Empty(t, buf.String())
}

func TestHandlerChain(t *testing.T) {
	svr := newTestServer(&bytes.Buffer{})
	svr.RegisterRoute("/api/health", func(w http.ResponseWriter, r *http.Request) {
		svr.JSON(w, http.StatusOK, map[string]string{"message": "Server is running"})
	}, []string{http.MethodGet})
	h := svr.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Route not found"}`, rec.Body.String())
}
