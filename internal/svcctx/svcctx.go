// Package svcctx carries the process-wide collaborators — the logger,
// the masked-LM adapter, and the metrics counters — through
// context.Context rather than a global singleton, so handlers and
// pipeline stages stay testable.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/hebrewscanner/reconstruct/internal/maskedlm"
	"github.com/hebrewscanner/reconstruct/internal/metrics"
)

// Services holds the collaborators that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Logger    *slog.Logger
	Predictor *maskedlm.Adapter
	Metrics   *metrics.Counters
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context. Returns
// nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// LoggerFrom extracts the logger from context, falling back to the
// default logger if none was attached.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// PredictorFrom extracts the masked-LM adapter from context. Returns
// nil if none was attached; callers must treat a nil predictor the
// same as an adapter whose engine reports not-ready.
func PredictorFrom(ctx context.Context) *maskedlm.Adapter {
	if s := ServicesFrom(ctx); s != nil {
		return s.Predictor
	}
	return nil
}

// MetricsFrom extracts the metrics counters from context. Returns nil
// if none were attached; callers must treat a nil value as "do not
// record metrics" rather than panicking.
func MetricsFrom(ctx context.Context) *metrics.Counters {
	if s := ServicesFrom(ctx); s != nil {
		return s.Metrics
	}
	return nil
}
