package server

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const defaultPort = 50051

type Option func(*options)

type options struct {
	port           int
	logger         *zap.Logger
	reflection     bool
	logging        bool
	maxRecvMsgSize int
}

func WithPort(port int) Option {
	return func(o *options) {
		o.port = port
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithReflection(enabled bool) Option {
	return func(o *options) {
		o.reflection = enabled
	}
}

func WithLogging(enabled bool) Option {
	return func(o *options) {
		o.logging = enabled
	}
}

// WithMaxRecvMsgSize sets the largest request the server accepts. Requests
// carry whole survey exports, which outgrow the 4MB gRPC default.
func WithMaxRecvMsgSize(bytes int) Option {
	return func(o *options) {
		o.maxRecvMsgSize = bytes
	}
}

func (o *options) validate() error {
	// Port 0 picks a free port.
	if o.port < 0 || o.port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 0 and 65535", o.port)
	}
	if o.maxRecvMsgSize < 0 {
		return fmt.Errorf("invalid max receive size %d", o.maxRecvMsgSize)
	}
	return nil
}

// serverOptions installs panic recovery as the outermost interceptor, then
// request logging when enabled.
func (o *options) serverOptions() []grpc.ServerOption {
	chain := []grpc.UnaryServerInterceptor{RecoveryInterceptor(o.logger)}
	if o.logging {
		chain = append(chain, LoggingInterceptor(o.logger))
	}

	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(chain...)}
	if o.maxRecvMsgSize > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(o.maxRecvMsgSize))
	}
	return opts
}

// Server is a gRPC server with the standard health service attached. Every
// registered service reports SERVING until Shutdown begins.
type Server struct {
	grpcServer   *grpc.Server
	lis          net.Listener
	logger       *zap.Logger
	healthServer *health.Server
	services     []string
}

// New listens on the configured port and builds the server.
func New(opts ...Option) (*Server, error) {
	o := &options{port: defaultPort}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", o.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", o.port, err)
	}

	grpcServer := grpc.NewServer(o.serverOptions()...)
	if o.reflection {
		reflection.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpcServer:   grpcServer,
		lis:          lis,
		logger:       o.logger.Named("grpc-server"),
		healthServer: healthServer,
	}, nil
}

// RegisterServiceWithHealth registers a service and marks it SERVING.
func (s *Server) RegisterServiceWithHealth(serviceName string, registerFunc func(s *grpc.Server)) {
	registerFunc(s.grpcServer)
	if serviceName == "" {
		return
	}

	s.services = append(s.services, serviceName)
	s.healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("registered service with health check", zap.String("service", serviceName))
}

// Start runs the server in a goroutine and returns immediately.
func (s *Server) Start() {
	addr := s.lis.Addr().String()
	go func() {
		if err := s.grpcServer.Serve(s.lis); err != nil {
			s.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()
	s.logger.Info("gRPC server started", zap.String("addr", addr), zap.Strings("services", s.services))
}

// Shutdown reports NOT_SERVING for every service, then drains in-flight
// report generations until ctx expires and stops hard after that.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gRPC server shutting down")

	s.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	for _, name := range s.services {
		s.healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("forced shutdown due to timeout")
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

// Port returns the TCP port the server listens on, useful with WithPort(0).
func (s *Server) Port() int {
	if addr, ok := s.lis.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}
