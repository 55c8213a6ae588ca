package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/mxgroup/internal/logging"
)

// withRequestMetadata adds the client IP and User-Agent to the log fields
// carried by ctx, so run logs can be traced back to a client.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return logging.ContextWithFields(ctx, "ip", clientIP(r), "user_agent", r.UserAgent())
}

// clientIP strips the port from RemoteAddr when present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
