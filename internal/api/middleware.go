package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/erazemk/izgubljeno/internal/apperr"
	"github.com/erazemk/izgubljeno/internal/auth"
	"github.com/erazemk/izgubljeno/internal/model"
)

type contextKey string

const (
	userKey   contextKey = "user"
	claimsKey contextKey = "claims"
)

const msgNoToken = "Not authorized to access this route"

// bearerToken returns the token from the Authorization header, or "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func withUser(r *http.Request, user *model.User, claims *auth.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), userKey, user)
	ctx = context.WithValue(ctx, claimsKey, claims)
	return r.WithContext(ctx)
}

// RequireAuth rejects requests without a valid bearer token and attaches
// the resolved user to the context.
func RequireAuth(svc *auth.Service, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				jsonError(w, r, logger, apperr.Auth(msgNoToken))
				return
			}

			user, claims, err := svc.Verify(r.Context(), token)
			if err != nil {
				jsonError(w, r, logger, err)
				return
			}

			next.ServeHTTP(w, withUser(r, user, claims))
		})
	}
}

// OptionalAuth attaches the user when a valid bearer token is present and
// otherwise lets the request through unchanged.
func OptionalAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if user, claims, err := svc.Verify(r.Context(), token); err == nil {
					r = withUser(r, user, claims)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUser returns the authenticated user, or nil.
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

// GetClaims retrieves the JWT claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.RequestURI()),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start).Round(time.Millisecond)),
			)
		})
	}
}
