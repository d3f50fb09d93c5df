package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rajasatyajit/StatusAggregator/internal/logger"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
)

// EventPublisher emits one machine-readable event per status change
type EventPublisher interface {
	Publish(ctx context.Context, change models.StatusChange) error
	Close() error
}

type natsConn interface {
	Publish(subj string, data []byte) error
	Close()
}

// NATSPublisher publishes status changes as JSON on a core NATS subject
type NATSPublisher struct {
	nc      natsConn
	subject string
}

// NewNATSPublisher connects to NATS, retrying in the background when the
// server is not yet reachable.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("statusaggregator"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	logger.Info("Connected to NATS", "url", url, "subject", subject)
	return &NATSPublisher{nc: nc, subject: subject}, nil
}

type changeEvent struct {
	models.StatusChange
	OccurredAt time.Time `json:"occurred_at"`
}

func (p *NATSPublisher) Publish(ctx context.Context, change models.StatusChange) error {
	data, err := json.Marshal(changeEvent{StatusChange: change, OccurredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	logger.WithContext(ctx).Debug("Event published", "subject", p.subject, "service", change.ServiceSlug)
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}
