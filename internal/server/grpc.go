package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthService is the service name reported by the gRPC health server in
// addition to the overall "" status.
const HealthService = "paystubs.Extractor"

// GRPCHealth serves grpc.health.v1 so orchestrators can probe the daemon.
type GRPCHealth struct {
	server *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func NewGRPCHealth(logger *slog.Logger) *GRPCHealth {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
	// reflection for grpcurl
	reflection.Register(gs)
	return &GRPCHealth{server: gs, health: hs, logger: logger}
}

// Serve blocks on lis until ctx is done, then marks the service not serving
// and stops gracefully.
func (g *GRPCHealth) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("grpc health serving", "addr", lis.Addr().String())
		errCh <- g.server.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	g.health.Shutdown()
	g.server.GracefulStop()
	g.logger.Info("grpc health stopped")
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (g *GRPCHealth) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return g.Serve(ctx, lis)
}
