package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"apexgarage/internal/handler"
	"apexgarage/internal/httputil"
	authmw "apexgarage/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	FollowHandler *handler.FollowHandler
	LikeHandler   *handler.LikeHandler
	TuneHandler   *handler.TuneHandler
	MediaHandler  *handler.MediaHandler
	JWTSecret     string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
	})

	// Public user endpoints with optional authentication
	r.Route("/users", func(r chi.Router) {
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/search", cfg.UserHandler.Search)
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/{id}", cfg.UserHandler.GetProfile)
		r.Get("/{id}/followers", cfg.FollowHandler.GetFollowers)
		r.Get("/{id}/following", cfg.FollowHandler.GetFollowing)
		r.Get("/{id}/tunes", cfg.TuneHandler.GetUserTunes)
	})

	// Public tune endpoints
	r.Get("/tunes/search", cfg.TuneHandler.Search)
	r.Get("/tunes/{id}", cfg.TuneHandler.GetByID)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)
		r.Post("/me/onboarding", cfg.AuthHandler.CompleteOnboarding)

		// Follow/unfollow actions
		r.Post("/users/{id}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{id}/follow", cfg.FollowHandler.Unfollow)

		// Profile like/unlike actions
		r.Post("/users/{id}/like", cfg.LikeHandler.Like)
		r.Delete("/users/{id}/like", cfg.LikeHandler.Unlike)

		// Feed endpoint
		r.Get("/feed", cfg.TuneHandler.GetFeed)

		// Tune endpoints
		r.Post("/tunes", cfg.TuneHandler.Create)
		r.Put("/tunes/{id}", cfg.TuneHandler.Update)
		r.Delete("/tunes/{id}", cfg.TuneHandler.Delete)

		// Media endpoints
		r.Post("/media/tunes", cfg.MediaHandler.UploadTuneImage)
		r.Post("/media/avatar", cfg.MediaHandler.UploadAvatar)
	})

	return r
}
