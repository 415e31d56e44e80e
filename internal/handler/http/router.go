package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/leavedesk/leave-backend-go/internal/handler/http/middleware"
	"github.com/leavedesk/leave-backend-go/internal/pkg/jwt"
)

func newBaseRouter(appName string) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	return r
}

// NewRouter builds the leave service router.
func NewRouter(JWTService jwt.Service, leaveHandler LeaveHandler) *chi.Mux {
	r := newBaseRouter("leavedesk-api")

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/init", leaveHandler.InitBalance)
				r.Get("/balances", leaveHandler.GetBalances)
				r.Post("/apply", leaveHandler.Apply)
				r.Get("/my", leaveHandler.MyLeaves)
				r.Post("/carryover", leaveHandler.Carryover)
				r.Get("/colleagues", leaveHandler.Colleagues)

				// Manager or admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Put("/{id}/approve", leaveHandler.Approve)
					r.Put("/{id}/reject", leaveHandler.Reject)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Put("/balances", leaveHandler.AdjustBalance)
					r.Get("/all", leaveHandler.AllLeaves)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/upcoming", leaveHandler.UpcomingHolidays)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", leaveHandler.AddHoliday)
				})
			})
		})
	})

	return r
}

// NewAuthRouter builds the auth service router.
func NewAuthRouter(authHandler AuthHandler) *chi.Mux {
	r := newBaseRouter("leavedesk-auth")

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/refresh", authHandler.RefreshToken)
		r.Post("/logout", authHandler.Logout)

		r.Route("/login", func(r chi.Router) {
			r.Post("/", authHandler.Login)
			r.Route("/oauth", func(r chi.Router) {
				r.Get("/google", authHandler.LoginWithGoogle)
			})
		})

		r.Route("/oauth/callback", func(r chi.Router) {
			r.Get("/google", authHandler.OAuthCallbackGoogle)
		})
	})

	return r
}
