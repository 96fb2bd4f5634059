package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate checks cross-field constraints that cleanenv tags cannot express.
// It collects all problems instead of failing on the first one.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "server.shutdown_timeout must be positive")
	}

	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, "auth.jwt_secret must be at least 32 characters")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		errs = append(errs, "auth.access_token_ttl must be positive")
	}
	if c.Auth.PasswordHashCost < 4 || c.Auth.PasswordHashCost > 31 {
		errs = append(errs, fmt.Sprintf("auth.password_hash_cost %d out of bcrypt range [4,31]", c.Auth.PasswordHashCost))
	}

	if c.Vision.MaxRetries < 0 {
		errs = append(errs, "vision.max_retries must not be negative")
	}
	if c.Vision.RequestTimeout < time.Second {
		errs = append(errs, "vision.request_timeout must be at least 1s")
	}
	if c.Vision.MaxImageBytes <= 0 {
		errs = append(errs, "vision.max_image_bytes must be positive")
	}

	if c.Nutrition.ConfidenceThreshold < 0 || c.Nutrition.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Sprintf("nutrition.confidence_threshold %v out of range [0,1]", c.Nutrition.ConfidenceThreshold))
	}

	if c.Events.NATSURL == "" {
		errs = append(errs, "events.nats_url must not be empty")
	}
	if c.Rollup.TaskQueue == "" {
		errs = append(errs, "rollup.task_queue must not be empty")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
