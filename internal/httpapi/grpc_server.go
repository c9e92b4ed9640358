package httpapi

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"aslaw.org/internal/obs"
)

const serviceName = "aslaw-api"

type readinessChecker interface {
	Check(ctx context.Context) error
}

// GRPCHealth exposes the standard grpc.health.v1 service for orchestrators
// that probe over gRPC. Its status mirrors the HTTP readiness probe.
type GRPCHealth struct {
	server *grpc.Server
	health *health.Server
	probe  readinessChecker
}

// NewGRPCHealth wires the health service to the readiness probe.
func NewGRPCHealth(probe readinessChecker) *GRPCHealth {
	g := &GRPCHealth{
		server: grpc.NewServer(),
		health: health.NewServer(),
		probe:  probe,
	}
	healthpb.RegisterHealthServer(g.server, g.health)
	g.refresh(context.Background())
	return g
}

// refresh re-evaluates readiness and publishes it to gRPC and the ready gauge.
func (g *GRPCHealth) refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	ready := true
	if err := g.probe.Check(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		ready = false
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(serviceName, status)
	obs.SetReady(ready)
}

// Serve blocks on lis, re-checking readiness every interval until ctx ends.
func (g *GRPCHealth) Serve(ctx context.Context, lis net.Listener, interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				g.server.GracefulStop()
				return
			case <-ticker.C:
				g.refresh(ctx)
			}
		}
	}()
	return g.server.Serve(lis)
}
