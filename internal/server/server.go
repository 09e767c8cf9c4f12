package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/internhill/jobboard/internal/apperr"
	"github.com/internhill/jobboard/internal/config"
	"github.com/internhill/jobboard/internal/middleware"

	"github.com/getsentry/raven-go"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg    config.Config
	router *mux.Router
	log    zerolog.Logger
	raven  *raven.Client
}

func NewServer(cfg config.Config, r *mux.Router, log zerolog.Logger) Server {
	svr := Server{
		cfg:    cfg,
		router: r,
		log:    log,
	}
	if cfg.SentryDSN != "" {
		client, err := raven.New(cfg.SentryDSN)
		if err != nil {
			svr.Log(err, "unable to initialise sentry client")
		} else {
			client.SetEnvironment(cfg.Env)
			svr.raven = client
		}
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		svr.JSON(w, http.StatusNotFound, map[string]string{"message": "Route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		svr.JSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "Method not allowed"})
	})
	return svr
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) Logger() zerolog.Logger {
	return s.log
}

func (s Server) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error answers with the status of err's kind and a {"message"} body.
// Internal errors are logged and replaced by a generic message.
func (s Server) Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		s.Log(err, "internal error")
	}
	s.JSON(w, kind.HTTPStatus(), map[string]string{"message": apperr.PublicMessage(err)})
}

// MEDIA sends a stored file as a download.
func (s Server) MEDIA(w http.ResponseWriter, status int, media []byte, mediaType, filename string) {
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "private, max-age=0")
	w.WriteHeader(status)
	w.Write(media)
}

func (s Server) Log(err error, msg string) {
	if s.raven != nil {
		s.raven.CaptureError(err, map[string]string{"ctx": msg})
	}
	s.log.Error().Err(err).Msg(msg)
}

// Handler wraps the router with the middleware chain every request goes
// through.
func (s Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(s.cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
		handlers.ExposedHeaders([]string{"X-Request-ID", "Content-Disposition"}),
		handlers.AllowCredentials(),
	)
	return middleware.HTTPSMiddleware(
		cors(
			handlers.CompressHandler(
				middleware.LoggingMiddleware(s.log, middleware.HeadersMiddleware(s.router, s.cfg.Env)),
			),
		),
		s.cfg.Env,
	)
}

func (s Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.IsDev() {
		s.log.Info().Msgf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return srv.ListenAndServe()
}
