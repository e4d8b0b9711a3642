package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/publishing-backend/internal/api/handlers"
	"github.com/baharkarakas/publishing-backend/internal/auth"
	"github.com/baharkarakas/publishing-backend/internal/metrics"
	"github.com/baharkarakas/publishing-backend/internal/middleware"
	"github.com/baharkarakas/publishing-backend/internal/services"
)

type RouterDeps struct {
	AuthSvc    *services.AuthService
	ArticleSvc *services.ArticleService
	Log        *slog.Logger
	// SigninRPS bounds sign-in attempts per second; 0 disables the limit.
	SigninRPS int
}

func NewRouter(d RouterDeps) http.Handler {
	users := handlers.NewAuthHandler(d.AuthSvc)
	articles := handlers.NewArticleHandler(d.ArticleSvc)
	authn := middleware.Authenticate(d.AuthSvc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, middleware.AccessLog(d.Log), middleware.Recover, middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "x-access-token", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- users ----------
		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", users.Signup)
			r.With(middleware.RateLimit(d.SigninRPS)).Post("/signin", users.Signin)

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Get("/me", users.Me)
				r.With(middleware.RequireRoles(auth.Admins)).Post("/", users.CreateUser)
				r.With(middleware.RequireRoles(auth.Admins)).Get("/", users.ListUsers)
			})
		})

		// ---------- articles ----------
		r.Route("/articles", func(r chi.Router) {
			r.Use(authn)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(auth.Authors))
				r.Post("/", articles.Create)
				r.Get("/my-articles", articles.Mine)
				r.Patch("/{id}/edit", articles.Edit)
				r.Patch("/{id}/submit", articles.Submit)
				r.Delete("/{id}", articles.Delete)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(auth.Moderators))
				r.Get("/moderation-queue", articles.Queue)
				r.Patch("/{id}/approve", articles.Approve)
				r.Patch("/{id}/reject", articles.Reject)
			})

			r.Get("/published", articles.Published)
			r.Get("/{id}", articles.Get)
		})
	})

	return r
}
