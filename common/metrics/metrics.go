package metrics

import (
	"log/slog"

	"go.opentelemetry.io/otel"
)

// Metrics groups the shared instruments used by repositories, publishers and
// the HTTP layer. Domain counters live in internal/metrics.
type Metrics struct {
	Database  *DatabaseMetrics
	HTTP      *HTTPMetrics
	Messaging *MessagingMetrics
	Health    *HealthMetrics
	logger    *slog.Logger
}

func New(serviceName string, logger *slog.Logger) (*Metrics, error) {
	meter := otel.Meter(serviceName)

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	httpMetrics, err := NewHTTPMetrics(meter)
	if err != nil {
		return nil, err
	}

	messaging, err := NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	health, err := NewHealthMetrics(meter)
	if err != nil {
		return nil, err
	}

	logger.Info("metrics collectors initialized successfully")

	return &Metrics{
		Database:  database,
		HTTP:      httpMetrics,
		Messaging: messaging,
		Health:    health,
		logger:    logger,
	}, nil
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{
		Database:  &DatabaseMetrics{},
		HTTP:      &HTTPMetrics{},
		Messaging: &MessagingMetrics{},
		Health:    &HealthMetrics{dependencies: make(map[string]*DependencyStatus)},
	}
}
