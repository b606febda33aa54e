package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/metrics"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const (
	DependencyPostgres = "postgres"
	pingTimeout        = 2 * time.Second
)

// Pinger is satisfied by *bun.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checker pings the database and publishes the result to the dependency
// metrics and the gRPC health service.
type Checker struct {
	db      Pinger
	metrics *metrics.Metrics
	server  *health.Server
	logger  *slog.Logger
}

func NewChecker(db Pinger, m *metrics.Metrics, logger *slog.Logger) *Checker {
	return &Checker{
		db:      db,
		metrics: m,
		server:  health.NewServer(),
		logger:  logger,
	}
}

func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := c.db.PingContext(ctx)
	c.metrics.Health.RecordDependencyCheck(ctx, DependencyPostgres, time.Since(start), err)

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	c.server.SetServingStatus("", status)
	return err
}

// StartHealthChecks re-checks the database every interval until ctx is done.
func (c *Checker) StartHealthChecks(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := c.Check(ctx); err != nil {
			c.logger.WarnContext(ctx, "database health check failed", "error", err)
		}
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// HealthServer exposes the grpc.health.v1 implementation backed by Check.
func (c *Checker) HealthServer() grpc_health_v1.HealthServer {
	return c.server
}

// NewGRPCServer builds the health-only gRPC server with OTel instrumentation.
func NewGRPCServer(c *Checker) *grpc.Server {
	server := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	grpc_health_v1.RegisterHealthServer(server, c.server)
	return server
}
