package apiclient

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// diagnostics writes the debug records for bodies that failed to decode.
// A nil limiter logs every failure.
type diagnostics struct {
	logger     *slog.Logger
	limiter    *rate.Limiter
	suppressed atomic.Int64
}

func (d *diagnostics) log() *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return slog.Default()
}

// decodeFailure records the raw body of a failed decode.
func (d *diagnostics) decodeFailure(status int, derr *DecodeError) {
	logger := d.log()
	ctx := context.Background()
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	if d.limiter != nil && !d.limiter.Allow() {
		d.suppressed.Add(1)
		return
	}

	attrs := []slog.Attr{
		slog.String("decode_id", derr.ID),
		slog.Int("status", status),
		slog.String("content_type", derr.ContentType),
		slog.String("body", derr.Body),
		slog.String("error", derr.Cause.Error()),
	}
	if n := d.suppressed.Swap(0); n > 0 {
		attrs = append(attrs, slog.Int64("suppressed", n))
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "failed to deserialize", attrs...)
}
