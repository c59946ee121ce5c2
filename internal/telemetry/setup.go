package telemetry

import (
	"context"
	"errors"

	"github.com/rshade/adminboard/internal/logging"
)

// New builds the reporter for cfg. Failures are always logged; when the
// OTLP exporter is enabled they are also counted. If the exporter cannot be
// created the error is logged and a log-only reporter is returned.
func New(ctx context.Context, cfg Config) Reporter {
	logReporter := NewLogReporter(nil)
	if !cfg.Enabled {
		return logReporter
	}

	otelReporter, err := NewOTelReporter(ctx, cfg)
	if err != nil {
		log := logging.FromContext(ctx)
		if errors.Is(err, ErrExporterDisabled) {
			log.Debug().Ctx(ctx).
				Str("component", "telemetry").
				Msg("telemetry enabled without endpoint, using log reporter")
		} else {
			log.Warn().Ctx(ctx).
				Str("component", "telemetry").
				Err(err).
				Msg("failed to create OTLP exporter, using log reporter")
		}
		return logReporter
	}

	return MultiReporter{logReporter, otelReporter}
}

// Close releases exporter resources held by r, if any.
func Close(ctx context.Context, r Reporter) error {
	if c, ok := r.(Closer); ok {
		return c.Close(ctx)
	}
	return nil
}
