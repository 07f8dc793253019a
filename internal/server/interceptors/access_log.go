package interceptors

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Logf matches log.Printf.
type Logf func(format string, args ...interface{})

// AccessLogUnary returns a unary server interceptor that writes one line per authenticated RPC:
// who asked for which workspace's data, and how it ended. Unauthenticated calls are not logged.
// A nil logf uses log.Printf.
func AccessLogUnary(logf Logf, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	if logf == nil {
		logf = log.Printf
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if skipMethods[info.FullMethod] {
			return resp, err
		}
		id, ok := GetIdentity(ctx)
		if !ok {
			return resp, err
		}
		logf("access: method=%s code=%s user=%q workspace=%q admin=%t ip=%s duration=%s",
			info.FullMethod, status.Code(err), id.UserID, id.WorkspaceID, id.Admin, ClientIP(ctx),
			time.Since(start).Round(time.Millisecond))
		return resp, err
	}
}
