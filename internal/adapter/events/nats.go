// Package events publishes domain events to NATS.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

// Subjects carried on the bus.
const (
	SubjectAnalysisCompleted = "nutrition.analysis.completed"
	SubjectLowConfidence     = "nutrition.low_confidence"
)

// Connect dials the NATS server with reconnect behaviour suitable for a
// long-running service.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return nc, nil
}

// Publisher emits nutrition events. A nil Publisher is not valid; callers
// that run without a bus should skip publishing instead.
type Publisher struct {
	nc  *nats.Conn
	log *slog.Logger
}

func NewPublisher(nc *nats.Conn, logger *slog.Logger) *Publisher {
	return &Publisher{nc: nc, log: logger}
}

// AnalysisCompleted announces a persisted nutrition log.
func (p *Publisher) AnalysisCompleted(ev domain.AnalysisCompleted) error {
	return p.publish(SubjectAnalysisCompleted, ev)
}

// LowConfidence flags an estimate that fell below the confirmation threshold.
func (p *Publisher) LowConfidence(ev domain.LowConfidence) error {
	return p.publish(SubjectLowConfidence, ev)
}

func (p *Publisher) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.log.Debug("event published", "subject", subject, "bytes", len(data))
	return nil
}
