package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/erazemk/izgubljeno/internal/apperr"
	"github.com/erazemk/izgubljeno/internal/auth"
	"github.com/erazemk/izgubljeno/internal/imaging"
)

const defaultMaxUploadBytes = 5 << 20

// Options configures the optional parts of the router.
type Options struct {
	// ClaimPolicy is config.ClaimAnyone or config.ClaimOwner.
	ClaimPolicy string
	// Images enables POST /api/upload and GET /uploads/* when set.
	Images         *imaging.Store
	MaxUploadBytes int64
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, authService *auth.Service, opts Options, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)

	authHandler := &AuthHandler{DB: db, Auth: authService, Logger: logger}
	itemsHandler := &ItemsHandler{DB: db, ClaimPolicy: opts.ClaimPolicy, Logger: logger}
	commentsHandler := &CommentsHandler{DB: db, Logger: logger}

	requireAuth := RequireAuth(authService, logger)
	optionalAuth := OptionalAuth(authService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.With(requireAuth).Get("/auth/me", authHandler.Me)
		r.With(requireAuth).Post("/auth/logout", authHandler.Logout)

		r.Route("/items", func(r chi.Router) {
			r.With(optionalAuth).Get("/", itemsHandler.List)
			r.With(optionalAuth).Get("/{id}", itemsHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", itemsHandler.Create)
				r.Put("/{id}", itemsHandler.Update)
				r.Patch("/{id}/claim", itemsHandler.Claim)
				r.Patch("/{id}/reactivate", itemsHandler.Reactivate)
				r.Delete("/{id}", itemsHandler.Delete)
			})
		})

		r.Get("/comments/{id}", commentsHandler.List)
		r.With(requireAuth).Post("/comments/{id}", commentsHandler.Create)
		r.With(requireAuth).Delete("/comments/{id}", commentsHandler.Delete)

		if opts.Images != nil {
			maxBytes := opts.MaxUploadBytes
			if maxBytes <= 0 {
				maxBytes = defaultMaxUploadBytes
			}
			uploadHandler := &UploadHandler{Images: opts.Images, MaxBytes: maxBytes, Logger: logger}
			r.With(requireAuth).Post("/upload", uploadHandler.Upload)
		}

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			jsonError(w, r, logger, apperr.NotFound("Route not found"))
		})
	})

	if opts.Images != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.Images.Dir))))
	}

	return r
}
