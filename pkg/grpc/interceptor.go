package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// UnaryServerLogging 記錄每個 unary 呼叫的方法、狀態碼與耗時
func UnaryServerLogging(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "grpc call",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed", time.Since(start),
		)
		return resp, err
	}
}

// UnaryClientLogging client 端的呼叫記錄，搭配 WithInterceptor 使用
func UnaryClientLogging(logger *slog.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		if err != nil {
			logger.Warn("grpc call failed", "method", method, "target", cc.Target(), "error", err, "elapsed", time.Since(start))
		}
		return err
	}
}
