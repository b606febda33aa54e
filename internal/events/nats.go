package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/metrics"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes each event on <prefix>.<event type>.
type NATSPublisher struct {
	conn    *nats.Conn
	prefix  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewNATSPublisher(url, prefix string, logger *slog.Logger, m *metrics.Metrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("vf-backend"))
	if err != nil {
		return nil, err
	}

	logger.Info("NATS publisher initialized", "url", url, "subject_prefix", prefix)

	return &NATSPublisher{
		conn:    nc,
		prefix:  prefix,
		logger:  logger,
		metrics: m,
	}, nil
}

func (p *NATSPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *NATSPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	start := time.Now()
	subject := p.Subject(eventType)

	data, err := json.Marshal(newEvent(eventType, payload))
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	if key != "" {
		msg.Header.Set("Event-Key", key)
	}

	err = p.conn.PublishMsg(msg)
	p.metrics.Messaging.RecordPublish(ctx, "nats", subject, time.Since(start), err)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event to NATS", "subject", subject, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "event published to NATS", "subject", subject)
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
