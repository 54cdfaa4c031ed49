package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/wekeepgrowing/ticket-payment/internal/config"
	"github.com/wekeepgrowing/ticket-payment/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server exposes the standard gRPC health service for the payment gateway.
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

func NewServer(cfg *config.Config, zapLogger *zap.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: zapLogger,
		health: health.NewServer(),
	}

	s.server = grpc.NewServer(
		grpc.UnaryInterceptor(logger.NewGrpcUnaryServerInterceptor(zapLogger)),
		grpc.StreamInterceptor(logger.NewGrpcStreamServerInterceptor(zapLogger)),
	)
	healthpb.RegisterHealthServer(s.server, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	if cfg.Service.Environment != "production" {
		reflection.Register(s.server)
	}
	return s
}

// Listen binds the configured address. Start calls it when no listener is set.
func (s *Server) Listen() error {
	addr := s.config.Server.GRPC.Addr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener
	return nil
}

func (s *Server) Start() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.logger.Info("Starting gRPC server", zap.String("address", s.listener.Addr().String()))
	return s.server.Serve(s.listener)
}

// SetServing flips the health status reported for every service.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if !serving {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.SetServing(false)

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn("Forcing gRPC server stop")
		s.server.Stop()
		return ctx.Err()
	case <-stopped:
		return nil
	}
}
