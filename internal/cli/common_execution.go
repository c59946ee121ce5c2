package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rshade/adminboard/internal/adminapi"
	"github.com/rshade/adminboard/internal/config"
	"github.com/rshade/adminboard/internal/engine"
	"github.com/rshade/adminboard/internal/engine/notify"
	"github.com/rshade/adminboard/internal/logging"
	"github.com/rshade/adminboard/internal/telemetry"
)

// auditContext holds common context for audit logging within a command.
type auditContext struct {
	logger  logging.AuditLogger
	traceID string
	params  map[string]string
	start   time.Time
	command string
}

// newAuditContext creates a new audit context.
func newAuditContext(ctx context.Context, command string, params map[string]string) *auditContext {
	return &auditContext{
		logger:  logging.AuditLoggerFromContext(ctx),
		traceID: logging.TraceIDFromContext(ctx),
		params:  params,
		start:   time.Now(),
		command: command,
	}
}

// logFailure logs an audit entry for a failed operation.
func (a *auditContext) logFailure(ctx context.Context, err error) {
	entry := logging.NewAuditEntry(a.command, a.traceID).
		WithParameters(a.params).
		WithError(err.Error()).
		WithDuration(a.start)
	a.logger.Log(ctx, *entry)
}

// logSuccess logs an audit entry for a successful operation.
func (a *auditContext) logSuccess(ctx context.Context) {
	entry := logging.NewAuditEntry(a.command, a.traceID).
		WithParameters(a.params).
		WithSuccess().
		WithDuration(a.start)
	a.logger.Log(ctx, *entry)
}

// sourceFactory builds the data source for a command. Tests replace it to
// avoid a live API.
//
//nolint:gochecknoglobals // Test seam for the API client.
var sourceFactory = func(cfg *config.Config) (dashboardSource, error) {
	client, err := adminapi.NewClient(adminapi.Config{
		BaseURL:          cfg.API.BaseURL,
		Token:            cfg.API.Token,
		Timeout:          cfg.API.Timeout,
		MinServerVersion: cfg.API.MinServerVersion,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// dashboardSource is everything the commands need from the admin API.
type dashboardSource interface {
	engine.DataSource
	ListVerifications(ctx context.Context, opts adminapi.ListOptions) ([]adminapi.Verification, error)
	ApproveVerification(ctx context.Context, id string) (adminapi.Verification, error)
	RejectVerification(ctx context.Context, id, reason string) (adminapi.Verification, error)
}

// session bundles the collaborators of one command run.
type session struct {
	cfg      *config.Config
	source   dashboardSource
	reporter telemetry.Reporter
	orch     *engine.Orchestrator
}

// newSession wires the API client, the failure reporter and the
// orchestrator from the global configuration. extra options are applied
// after the configured ones.
func newSession(ctx context.Context, extra ...engine.Option) (*session, error) {
	cfg := config.GetGlobalConfig()

	source, err := sourceFactory(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}

	reporter := telemetry.New(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Insecure: cfg.Telemetry.Insecure,
	})

	opts := []engine.Option{
		engine.WithReporter(reporter),
		engine.WithCacheTTL(cfg.Dashboard.CacheTTL),
		engine.WithRefreshOptions(cfg.Dashboard.RefreshTimeout, cfg.Dashboard.RefreshRetries),
		engine.WithPeriods(cfg.SalesPeriod(), cfg.GrowthPeriod()),
	}
	opts = append(opts, extra...)

	return &session{
		cfg:      cfg,
		source:   source,
		reporter: reporter,
		orch:     engine.NewOrchestrator(source, opts...),
	}, nil
}

// Close flushes the failure reporter.
func (s *session) Close(ctx context.Context) {
	if err := telemetry.Close(ctx, s.reporter); err != nil {
		logging.FromContext(ctx).Warn().Ctx(ctx).Err(err).Msg("failed to flush telemetry")
	}
}

// stderrNotifier prints notifications to w for non-interactive commands.
func stderrNotifier(w io.Writer) *notify.Notifier {
	return notify.New(func(ev notify.Event) {
		if ev.Severity != notify.SeverityError && ev.Severity != notify.SeverityWarning {
			return
		}
		if ev.Message != "" {
			_, _ = fmt.Fprintf(w, "%s: %s: %s\n", ev.Severity, ev.Title, ev.Message)
			return
		}
		_, _ = fmt.Fprintf(w, "%s: %s\n", ev.Severity, ev.Title)
	})
}

// resolveOutput returns the explicit --output value or the configured default.
func resolveOutput(flag string) (string, error) {
	if flag == "" {
		flag = config.GetDefaultOutputFormat()
	}
	switch flag {
	case config.FormatTable, config.FormatJSON:
		return flag, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want table or json)", flag)
	}
}

func renderOptions() engine.RenderOptions {
	return engine.RenderOptions{Precision: config.GetOutputPrecision()}
}
