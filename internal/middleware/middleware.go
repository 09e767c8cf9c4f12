package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/internhill/jobboard/internal/apperr"
	"github.com/internhill/jobboard/internal/auth"
	"github.com/internhill/jobboard/internal/user"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const identityKey ctxKey = iota

// ErrorResponder writes err to the client in the API's error format.
type ErrorResponder interface {
	Error(w http.ResponseWriter, err error)
}

type tokenParser interface {
	Parse(tk string) (auth.Identity, error)
}

// HTTPSMiddleware redirects plain http GETs behind the proxy and refuses
// every other plain http request.
func HTTPSMiddleware(next http.Handler, env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if env != "dev" && r.Header.Get("X-Forwarded-Proto") == "http" {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				target := "https://" + r.Host + r.URL.RequestURI()
				http.Redirect(w, r, target, http.StatusMovedPermanently)
				return
			}
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func LoggingMiddleware(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Str("x-forwarded-for", r.Header.Get("x-forwarded-for")).
			Msg("req")
	})
}

func HeadersMiddleware(next http.Handler, env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("Referrer-Policy", "no-referrer")
		if env != "dev" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// AuthenticatedMiddleware resolves the bearer token into an identity stored
// on the request context.
func AuthenticatedMiddleware(tokens tokenParser, rsp ErrorResponder, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := tokens.Parse(BearerToken(r))
		if err != nil {
			rsp.Error(w, err)
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}

// RoleMiddleware must run inside AuthenticatedMiddleware.
func RoleMiddleware(rsp ErrorResponder, next http.HandlerFunc, roles ...user.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			rsp.Error(w, apperr.Unauthenticated("Not authorized, no token"))
			return
		}
		if err := auth.Authorize(id, roles...); err != nil {
			rsp.Error(w, err)
			return
		}
		next(w, r)
	}
}

func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}
