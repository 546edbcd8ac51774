// Package requestctx carries per-call identifiers through a context so log
// lines emitted deep inside the store or thumbnail workers can be tied back to
// the library operation that caused them.
package requestctx

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	assetIDKey   contextKey = "asset_id"
	operationKey contextKey = "operation"
	requestIDKey contextKey = "request_id"
)

// WithAssetID annotates context with the asset identifier being acted on.
func WithAssetID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, assetIDKey, id)
}

// AssetIDFromContext extracts the asset identifier if present.
func AssetIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(assetIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithOperation annotates context with the library operation name.
func WithOperation(ctx context.Context, operation string) context.Context {
	if operation == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, operation)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(operationKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

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

// Begin tags ctx with the operation name and a fresh request ID. An existing
// request ID is kept so nested operations share one correlation value.
func Begin(ctx context.Context, operation string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = WithOperation(ctx, operation)
	if _, ok := RequestIDFromContext(ctx); ok {
		return ctx
	}
	return WithRequestID(ctx, uuid.NewString())
}
