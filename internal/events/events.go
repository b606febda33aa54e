package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/config"
)

const (
	ApplicationSubmitted     = "application.submitted"
	ApplicationStatusChanged = "application.status_changed"
	OnboardingSubmitted      = "onboarding.submitted"
	ContactReceived          = "contact.received"
	AdminOTPRequested        = "admin.otp_requested"
)

// Event is the envelope written to the broker.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher delivers domain events to a broker. Implementations must be safe
// for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, eventType string, key string, payload interface{}) error
	Close() error
}

// Notify publishes an event and only logs on failure; request handling never
// depends on broker availability.
func Notify(ctx context.Context, p Publisher, logger *slog.Logger, eventType, key string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, eventType, key, payload); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "type", eventType, "key", key, "error", err)
	}
}

func newEvent(eventType string, payload interface{}) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

type noop struct{}

// NewNoop returns a publisher that drops every event.
func NewNoop() Publisher {
	return noop{}
}

func (noop) Publish(context.Context, string, string, interface{}) error { return nil }

func (noop) Close() error { return nil }

// Recorder keeps published events in memory. Used by tests.
type Recorder struct {
	Events []Event
	Keys   []string
}

func (r *Recorder) Publish(_ context.Context, eventType, key string, payload interface{}) error {
	r.Events = append(r.Events, newEvent(eventType, payload))
	r.Keys = append(r.Keys, key)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types lists the recorded event types in order.
func (r *Recorder) Types() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}

// New builds the publisher selected by cfg.Driver.
func New(cfg config.EventsConfig, logger *slog.Logger, m *metrics.Metrics) (Publisher, error) {
	switch cfg.Driver {
	case "nats":
		return NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger, m)
	case "kafka":
		return NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger, m)
	default:
		logger.Info("domain events disabled")
		return NewNoop(), nil
	}
}
