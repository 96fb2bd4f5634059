package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mstepanov/fitcoach-backend/internal/adapter/events"
	"github.com/mstepanov/fitcoach-backend/internal/adapter/postgres"
	"github.com/mstepanov/fitcoach-backend/internal/adapter/postgres/dailysummary"
	"github.com/mstepanov/fitcoach-backend/internal/adapter/postgres/nutritionlog"
	"github.com/mstepanov/fitcoach-backend/internal/adapter/postgres/user"
	"github.com/mstepanov/fitcoach-backend/internal/adapter/provider/claude"
	internalauth "github.com/mstepanov/fitcoach-backend/internal/auth"
	"github.com/mstepanov/fitcoach-backend/internal/config"
	authsvc "github.com/mstepanov/fitcoach-backend/internal/service/auth"
	"github.com/mstepanov/fitcoach-backend/internal/service/nutrition"
	"github.com/mstepanov/fitcoach-backend/internal/service/summary"
	"github.com/mstepanov/fitcoach-backend/internal/transport/middleware"
	"github.com/mstepanov/fitcoach-backend/internal/transport/rest"
)

// Run starts the API server: config, logger, database, event bus, model
// provider, services, HTTP transport. It blocks until ctx is cancelled, then
// shuts the server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting api server",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	nc, err := events.Connect(cfg.Events.NATSURL)
	if err != nil {
		return fmt.Errorf("connect to event bus: %w", err)
	}
	defer nc.Close()

	// The model client is mandatory for this binary: a missing API key is a
	// startup failure, not a degraded mode.
	vision, err := claude.New(cfg.Vision, logger)
	if err != nil {
		return fmt.Errorf("create vision client: %w", err)
	}

	users := user.New(pool)
	logs := nutritionlog.New(pool)
	summaries := dailysummary.New(pool)
	tx := postgres.NewTxManager(pool)

	publisher := events.NewPublisher(nc, logger)
	jwtManager := internalauth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	authService := authsvc.NewService(logger, users, jwtManager, cfg.Auth)
	pipeline := nutrition.NewService(logger, vision, vision, logs, publisher, cfg.Vision, cfg.Nutrition)
	summaryService := summary.NewService(logger, users, logs, summaries, tx)

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	router := rest.NewRouter(rest.RouterDeps{
		Auth:      rest.NewAuthHandler(authService, logger),
		Nutrition: rest.NewNutritionHandler(pipeline, summaryService, cfg.Vision.MaxImageBytes, logger),
		Health:    rest.NewHealthHandler(pool, BuildVersion()),
		Validator: authService,
		Limiter:   limiter,
		Cfg:       cfg,
	})

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	)(router)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
