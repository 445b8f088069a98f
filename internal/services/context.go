package services

import "context"

type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	clientAddrKey contextKey = "client_addr"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithClientAddr annotates context with the remote address of the caller.
func WithClientAddr(ctx context.Context, addr string) context.Context {
	if addr == "" {
		return ctx
	}
	return context.WithValue(ctx, clientAddrKey, addr)
}

// ClientAddrFromContext returns the caller address if present.
func ClientAddrFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(clientAddrKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
