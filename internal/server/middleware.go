// internal/server/middleware.go
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jobmate-backend/internal/auth"
	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/metrics"
	"jobmate-backend/internal/models"
)

type contextKey string

const claimsKey contextKey = "authClaims"

// claimsFrom returns the verified claims stored by requireAuth.
func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

type middleware func(http.Handler) http.Handler

func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// recovery turns handler panics into a 500 response instead of a dropped
// connection.
func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panic", map[string]interface{}{
					"path":  r.URL.Path,
					"panic": rec,
				})
				writeJSON(w, http.StatusInternalServerError, errorEnvelope{
					Success: false,
					Message: "Internal server error",
					Code:    string(apperrors.ErrCodeInternal),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestLogging logs each request and records the Prometheus and otel
// request metrics.
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		duration := time.Since(start)
		status := strconv.Itoa(rec.status)

		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(duration.Seconds())
		if s.obs != nil {
			s.obs.RecordRequest(r.Context(), route, status)
			s.obs.RecordRequestDuration(r.Context(), duration, route)
		}

		s.logger.Info("request handled", map[string]interface{}{
			"method":   r.Method,
			"path":     route,
			"status":   rec.status,
			"duration": duration.String(),
		})
	})
}

// requireAuth verifies the bearer token and, when roles are given, gates on
// the token's role claim. Claims land in the request context.
func (s *Server) requireAuth(roles ...models.UserRole) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				s.respondError(w, apperrors.NewAuthenticationError("missing bearer token"), "auth")
				return
			}

			claims, err := s.tokens.Verify(r.Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				s.respondError(w, err, "auth")
				return
			}

			if len(roles) > 0 && !roleAllowed(claims.Role, roles) {
				s.respondError(w, apperrors.NewAuthorizationError(
					"role "+claims.Role+" may not access this resource"), "auth")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roleAllowed(role string, allowed []models.UserRole) bool {
	for _, a := range allowed {
		if models.UserRole(role) == a {
			return true
		}
	}
	return false
}
