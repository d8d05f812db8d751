package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bkaratas/account-service/internal/api/handlers"
	"github.com/bkaratas/account-service/internal/api/httpx"
	"github.com/bkaratas/account-service/internal/auth"
	"github.com/bkaratas/account-service/internal/config"
	"github.com/bkaratas/account-service/internal/middleware"
	"github.com/bkaratas/account-service/internal/models"
	"github.com/bkaratas/account-service/internal/services"
)

func NewRouter(cfg config.Config, tm *auth.TokenManager, us *services.UserService, as *services.AccountService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.Handler())

	authH := handlers.NewAuthHandler(us)
	accountsH := handlers.NewAccountsHandler(as)
	authMW := middleware.NewAuthMiddleware(tm)

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth", authH.Authorize)
		r.Put("/auth", authH.Refresh)

		// ---------- accounts ----------
		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			r.Post("/accounts", accountsH.Create)
			r.Get("/accounts", accountsH.List)
			r.Get("/accounts/{id}", accountsH.Get)
			r.Put("/accounts/{id}", accountsH.Deposit)
			r.Post("/accounts/{id}/transfer", accountsH.Transfer)

			// ---------- users (admin) ----------
			r.With(middleware.RequireRole(models.RoleAdmin)).
				Get("/users", func(w http.ResponseWriter, r *http.Request) {
					users, err := us.List(r.Context())
					if err != nil {
						httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
						return
					}
					httpx.WriteJSON(w, http.StatusOK, users)
				})
		})
	})

	return r
}
