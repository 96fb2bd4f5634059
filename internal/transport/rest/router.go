package rest

import (
	"net/http"

	"github.com/mstepanov/fitcoach-backend/internal/config"
	"github.com/mstepanov/fitcoach-backend/internal/transport/middleware"
)

// RouterDeps collects everything the HTTP router needs.
type RouterDeps struct {
	Auth      *AuthHandler
	Nutrition *NutritionHandler
	Health    *HealthHandler
	Validator middleware.TokenValidator
	Limiter   *middleware.RateLimiter
	Cfg       *config.Config
}

// NewRouter builds the HTTP routing table. Auth endpoints and probes are
// public; everything under /api/v1/nutrition requires a valid token.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", deps.Health.Health)
	mux.HandleFunc("GET /health/live", deps.Health.Live)
	mux.HandleFunc("GET /health/ready", deps.Health.Ready)

	mux.HandleFunc("POST /api/v1/auth/register", deps.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", deps.Auth.Login)

	protected := middleware.Chain(
		middleware.Auth(deps.Validator),
		middleware.RequireAuth(),
	)

	upload := middleware.Chain(
		middleware.Auth(deps.Validator),
		middleware.RequireAuth(),
		deps.Limiter.Limit(deps.Cfg.Server.UploadRateLimit),
	)

	mux.Handle("POST /api/v1/nutrition/logs", upload(http.HandlerFunc(deps.Nutrition.Upload)))
	mux.Handle("GET /api/v1/nutrition/logs", protected(http.HandlerFunc(deps.Nutrition.ListLogs)))
	mux.Handle("GET /api/v1/nutrition/logs/{id}", protected(http.HandlerFunc(deps.Nutrition.GetLog)))
	mux.Handle("GET /api/v1/nutrition/summary", protected(http.HandlerFunc(deps.Nutrition.GetSummary)))

	return mux
}
