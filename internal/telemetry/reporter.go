// Package telemetry reports dashboard fetch failures to logs and, when
// configured, to an OpenTelemetry collector.
package telemetry

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rshade/adminboard/internal/logging"
)

// ReportContext describes where a failure happened.
type ReportContext struct {
	// Line is the dashboard line that failed ("summary", "sales", ...).
	Line string
	// Operation is the user-facing operation ("fetch", "refresh_all", "refresh").
	Operation string
	// Attempt is the 1-based retry attempt, or 0 outside a retried refresh.
	Attempt int
}

// Reporter receives every fetch failure the orchestrator observes.
type Reporter interface {
	Report(ctx context.Context, err error, rc ReportContext)
}

// Closer is implemented by reporters that hold exporter resources.
type Closer interface {
	Close(ctx context.Context) error
}

// Kind values returned by ErrorKind.
const (
	KindUnknown  = "unknown"
	KindTimeout  = "timeout"
	KindCanceled = "canceled"
)

// ErrorKind classifies err for metric attributes. Errors may implement
// Kind() string to name themselves.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var k interface{ Kind() string }
	if errors.As(err, &k) {
		return k.Kind()
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// NoOpReporter discards every report.
type NoOpReporter struct{}

// NewNoOpReporter creates a reporter that does nothing.
func NewNoOpReporter() NoOpReporter {
	return NoOpReporter{}
}

// Report implements Reporter.
func (NoOpReporter) Report(context.Context, error, ReportContext) {}

// LogReporter writes each failure as a warning.
type LogReporter struct {
	logger *zerolog.Logger
}

// NewLogReporter creates a reporter writing to logger. A nil logger means
// the logger carried by each Report context is used.
func NewLogReporter(logger *zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report implements Reporter.
func (r *LogReporter) Report(ctx context.Context, err error, rc ReportContext) {
	log := r.logger
	if log == nil {
		log = logging.FromContext(ctx)
	}
	ev := log.Warn().Ctx(ctx).
		Str("component", "telemetry").
		Str("line", rc.Line).
		Str("operation", rc.Operation).
		Str("kind", ErrorKind(err))
	if rc.Attempt > 0 {
		ev = ev.Int("attempt", rc.Attempt)
	}
	ev.Err(err).Msg("dashboard fetch failed")
}

// MultiReporter fans a report out to several reporters.
type MultiReporter []Reporter

// Report implements Reporter.
func (m MultiReporter) Report(ctx context.Context, err error, rc ReportContext) {
	for _, r := range m {
		if r != nil {
			r.Report(ctx, err, rc)
		}
	}
}

// Close closes every member that implements Closer and joins their errors.
func (m MultiReporter) Close(ctx context.Context) error {
	var errs []error
	for _, r := range m {
		if c, ok := r.(Closer); ok {
			if err := c.Close(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
