// Package claude talks to the Anthropic API for the two model passes of the
// photo analysis pipeline: the vision estimate and the plausibility check.
package claude

import (
	"fmt"
	"log/slog"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mstepanov/fitcoach-backend/internal/config"
	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

// maxResponseTokens bounds each model reply. Both passes return a single
// JSON object well under this size.
const maxResponseTokens = 2048

// Client issues structured-completion requests to the model provider.
// Construct it once at startup and inject it; there is no lazy global.
type Client struct {
	api   anthropic.Client
	model anthropic.Model
	log   *slog.Logger
}

// New creates a Client from VisionConfig. It fails with ErrNotConfigured
// when the API key is empty: a missing key must abort startup, not surface
// as a per-request failure later.
func New(cfg config.VisionConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vision api key is empty: %w", domain.ErrNotConfigured)
	}

	api := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(cfg.RequestTimeout),
	)

	return &Client{
		api:   api,
		model: anthropic.Model(cfg.Model),
		log:   logger.With("provider", "claude"),
	}, nil
}

// firstText returns the text of the first content block, or an
// ErrInvalidModelOutput error when the reply has no text content.
func firstText(msg *anthropic.Message) (string, error) {
	if msg == nil || len(msg.Content) == 0 {
		return "", fmt.Errorf("empty model response: %w", domain.ErrInvalidModelOutput)
	}
	return msg.Content[0].Text, nil
}
