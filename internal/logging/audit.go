package logging

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// AuditLoggerConfig controls the audit trail for state-changing commands.
type AuditLoggerConfig struct {
	Enabled bool
	File    string
}

// AuditEntry is one audited command outcome.
type AuditEntry struct {
	Command    string
	TraceID    string
	Parameters map[string]string
	Success    bool
	Error      string
	Duration   time.Duration
}

// NewAuditEntry starts an entry for command.
func NewAuditEntry(command, traceID string) *AuditEntry {
	return &AuditEntry{Command: command, TraceID: traceID}
}

// WithParameters attaches the command parameters.
func (e *AuditEntry) WithParameters(params map[string]string) *AuditEntry {
	e.Parameters = params
	return e
}

// WithError marks the entry failed.
func (e *AuditEntry) WithError(msg string) *AuditEntry {
	e.Success = false
	e.Error = msg
	return e
}

// WithSuccess marks the entry successful.
func (e *AuditEntry) WithSuccess() *AuditEntry {
	e.Success = true
	e.Error = ""
	return e
}

// WithDuration records the elapsed time since start.
func (e *AuditEntry) WithDuration(start time.Time) *AuditEntry {
	e.Duration = time.Since(start)
	return e
}

// AuditLogger writes audit entries.
type AuditLogger interface {
	Log(ctx context.Context, entry AuditEntry)
	Close() error
}

type auditKey struct{}

// NewAuditLogger returns a JSON-lines audit logger, or a no-op one when
// disabled or when the audit file cannot be opened.
func NewAuditLogger(cfg AuditLoggerConfig) AuditLogger {
	if !cfg.Enabled || cfg.File == "" {
		return noopAuditLogger{}
	}
	f, err := openLogFile(cfg.File)
	if err != nil {
		return noopAuditLogger{}
	}
	return &fileAuditLogger{
		file:   f,
		logger: zerolog.New(f).With().Timestamp().Logger(),
	}
}

// ContextWithAuditLogger stores the audit logger in ctx.
func ContextWithAuditLogger(ctx context.Context, l AuditLogger) context.Context {
	return context.WithValue(ctx, auditKey{}, l)
}

// AuditLoggerFromContext returns the audit logger in ctx or a no-op logger.
func AuditLoggerFromContext(ctx context.Context) AuditLogger {
	if ctx != nil {
		if l, ok := ctx.Value(auditKey{}).(AuditLogger); ok {
			return l
		}
	}
	return noopAuditLogger{}
}

type fileAuditLogger struct {
	file   *os.File
	logger zerolog.Logger
}

func (l *fileAuditLogger) Log(_ context.Context, entry AuditEntry) {
	ev := l.logger.Log().
		Str("command", entry.Command).
		Str("trace_id", entry.TraceID).
		Bool("success", entry.Success).
		Dur("duration", entry.Duration)
	if len(entry.Parameters) > 0 {
		ev = ev.Interface("parameters", entry.Parameters)
	}
	if entry.Error != "" {
		ev = ev.Str("error", entry.Error)
	}
	ev.Msg("audit")
}

func (l *fileAuditLogger) Close() error {
	return l.file.Close()
}

type noopAuditLogger struct{}

func (noopAuditLogger) Log(context.Context, AuditEntry) {}
func (noopAuditLogger) Close() error                    { return nil }
