package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type key int

const requestKey key = 0

// RequestContext identifies one public API call and everything it fetches
type RequestContext struct {
	RequestID string
	StartTime time.Time
}

// WithRequestContext attaches a fresh request ID to ctx
func WithRequestContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestKey, &RequestContext{
		RequestID: generateID(),
		StartTime: time.Now(),
	})
}

// Ensure returns ctx unchanged if it already carries a request ID, otherwise attaches one
func Ensure(ctx context.Context) context.Context {
	if _, ok := ctx.Value(requestKey).(*RequestContext); ok {
		return ctx
	}
	return WithRequestContext(ctx)
}

func GetRequestContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestKey).(*RequestContext); ok {
		return rc
	}
	return &RequestContext{
		RequestID: "unknown",
		StartTime: time.Now(),
	}
}

// Logger returns the global logger tagged with the request ID carried by ctx
func Logger(ctx context.Context) zerolog.Logger {
	return log.With().Str("request_id", GetRequestContext(ctx).RequestID).Logger()
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// RequestError wraps an error with request context
type RequestError struct {
	RequestID string
	Err       error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RequestID, e.Err)
}

// Unwrap returns the underlying error
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a new RequestError from context
func NewRequestError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	rc := GetRequestContext(ctx)
	return &RequestError{
		RequestID: rc.RequestID,
		Err:       err,
	}
}
