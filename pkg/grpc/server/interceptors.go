package server

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

func clientAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return "unknown"
}

// failureLevel logs caller mistakes at Warn and server faults at Error.
func failureLevel(code codes.Code) zapcore.Level {
	switch code {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.NotFound,
		codes.Canceled, codes.DeadlineExceeded, codes.ResourceExhausted:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// LoggingInterceptor logs the start and outcome of every unary call.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		method := zap.String("method", info.FullMethod)

		logger.Info("gRPC request started", method, zap.String("client_addr", clientAddr(ctx)))

		resp, err := handler(ctx, req)
		duration := zap.Duration("duration", time.Since(start))

		if err != nil {
			st := status.Convert(err)
			logger.Log(failureLevel(st.Code()), "gRPC request failed",
				method,
				duration,
				zap.String("status_code", st.Code().String()),
				zap.String("status_message", st.Message()))
			return resp, err
		}

		logger.Info("gRPC request completed", method, duration, zap.String("status_code", codes.OK.String()))
		return resp, nil
	}
}

// RecoveryInterceptor converts a handler panic into an Internal status.
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panic",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.Stack("stack"))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
