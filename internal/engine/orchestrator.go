package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rshade/adminboard/internal/engine/batch"
	"github.com/rshade/adminboard/internal/engine/cache"
	"github.com/rshade/adminboard/internal/engine/notify"
	"github.com/rshade/adminboard/internal/engine/retry"
	"github.com/rshade/adminboard/internal/logging"
	"github.com/rshade/adminboard/internal/telemetry"
)

// Operation names used in logs and telemetry.
const (
	OpFetch      = "fetch"
	OpRefreshAll = "refresh_all"
	OpRefresh    = "refresh"
)

// Default manual refresh settings.
const (
	DefaultRefreshTimeout = 10 * time.Second
	DefaultRefreshRetries = 2
	refreshOperationName  = "dashboard refresh"
)

// Orchestrator fetches the dashboard lines, merges them into one ViewState
// and caches the summary for a fixed TTL.
//
// ViewState, the line table and the summary cache are guarded by mu. Network
// calls always run outside the lock.
type Orchestrator struct {
	source      DataSource
	notifier    *notify.Notifier
	reporter    telemetry.Reporter
	onUpdate    func(ViewState)
	onProgress  func(batch.ProgressSnapshot)
	refreshOpts retry.Options
	now         cache.Clock

	mu           sync.Mutex
	state        ViewState
	lines        [lineCount]lineState
	summaryCache *cache.Cell[DashboardSummary]

	initOnce sync.Once
	initErr  error
}

// Option configures an Orchestrator.
type Option func(*orchestratorConfig)

type orchestratorConfig struct {
	notifier     *notify.Notifier
	reporter     telemetry.Reporter
	onUpdate     func(ViewState)
	onProgress   func(batch.ProgressSnapshot)
	refreshOpts  retry.Options
	cacheTTL     time.Duration
	now          cache.Clock
	salesPeriod  SalesPeriod
	growthPeriod GrowthPeriod
}

// WithNotifier sets the notifier used for user-facing failure messages.
func WithNotifier(n *notify.Notifier) Option {
	return func(c *orchestratorConfig) { c.notifier = n }
}

// WithReporter sets the telemetry reporter.
func WithReporter(r telemetry.Reporter) Option {
	return func(c *orchestratorConfig) { c.reporter = r }
}

// WithUpdateHook registers fn to receive a snapshot after every state change.
// fn is called without the orchestrator lock held and may be called from
// several goroutines; use ViewState.Revision to order snapshots.
func WithUpdateHook(fn func(ViewState)) Option {
	return func(c *orchestratorConfig) { c.onUpdate = fn }
}

// WithProgressHook registers fn to receive the progress of every RefreshAll
// after each line settles.
func WithProgressHook(fn func(batch.ProgressSnapshot)) Option {
	return func(c *orchestratorConfig) { c.onProgress = fn }
}

// WithRefreshOptions sets the timeout and retry budget of Refresh.
func WithRefreshOptions(timeout time.Duration, retries int) Option {
	return func(c *orchestratorConfig) {
		c.refreshOpts.Timeout = timeout
		c.refreshOpts.Retries = retries
	}
}

// WithCacheTTL sets the summary cache lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *orchestratorConfig) { c.cacheTTL = ttl }
}

// WithClock replaces time.Now for cache validity and line timestamps.
func WithClock(now cache.Clock) Option {
	return func(c *orchestratorConfig) { c.now = now }
}

// WithPeriods sets the series periods used by RefreshAll.
func WithPeriods(sales SalesPeriod, growth GrowthPeriod) Option {
	return func(c *orchestratorConfig) {
		if sales.Valid() {
			c.salesPeriod = sales
		}
		if growth.Valid() {
			c.growthPeriod = growth
		}
	}
}

// NewOrchestrator creates an orchestrator over source with an empty ViewState.
func NewOrchestrator(source DataSource, opts ...Option) *Orchestrator {
	cfg := orchestratorConfig{
		refreshOpts: retry.Options{
			Timeout: DefaultRefreshTimeout,
			Retries: DefaultRefreshRetries,
		},
		cacheTTL:     cache.DefaultTTL,
		now:          time.Now,
		salesPeriod:  SalesMonth,
		growthPeriod: GrowthMonth,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.notifier == nil {
		cfg.notifier = notify.New(nil)
	}
	if cfg.reporter == nil {
		cfg.reporter = telemetry.NewNoOpReporter()
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	cfg.refreshOpts.OperationName = refreshOperationName

	return &Orchestrator{
		source:       source,
		notifier:     cfg.notifier,
		reporter:     cfg.reporter,
		onUpdate:     cfg.onUpdate,
		onProgress:   cfg.onProgress,
		refreshOpts:  cfg.refreshOpts,
		now:          cfg.now,
		summaryCache: cache.NewCell[DashboardSummary](cfg.cacheTTL, cache.WithClock(cfg.now)),
		state: ViewState{
			SalesPeriod:  cfg.salesPeriod,
			GrowthPeriod: cfg.growthPeriod,
			Lines:        make(map[Line]LineInfo, lineCount),
		},
	}
}

// Notifier returns the notifier so the UI can install its callback.
func (o *Orchestrator) Notifier() *notify.Notifier {
	return o.notifier
}

// State returns a copy of the current ViewState.
func (o *Orchestrator) State() ViewState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Snapshot()
}

// SummaryCacheEntry returns the cached summary and its capture time.
func (o *Orchestrator) SummaryCacheEntry() (cache.Entry[DashboardSummary], bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.summaryCache.Entry()
}

// SummaryCacheTTL returns the lifetime of a cached summary.
func (o *Orchestrator) SummaryCacheTTL() time.Duration {
	return o.summaryCache.TTL()
}

// InvalidateSummary drops the cached summary so the next FetchSummary
// goes to the network.
func (o *Orchestrator) InvalidateSummary() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.summaryCache.Invalidate()
}

// fetchMode controls side effects of a line fetch.
type fetchMode struct {
	operation string
	quiet     bool
}

// FetchSummary returns the dashboard summary. Unless forceRefresh is set, a
// summary younger than the cache TTL is returned without a network call and
// without touching the loading state. A forced fetch drops the cached
// summary before it goes to the network.
func (o *Orchestrator) FetchSummary(ctx context.Context, forceRefresh bool) (DashboardSummary, error) {
	if forceRefresh {
		o.InvalidateSummary()
	} else {
		o.mu.Lock()
		if o.summaryCache.Valid() {
			summary, _ := o.summaryCache.Get()
			o.mu.Unlock()
			logging.FromContext(ctx).Debug().Ctx(ctx).
				Str("component", "engine").
				Str("line", LineSummary.String()).
				Msg("summary served from cache")
			return summary, nil
		}
		o.mu.Unlock()
	}
	return o.fetchSummary(ctx, fetchMode{operation: OpFetch})
}

func (o *Orchestrator) fetchSummary(ctx context.Context, mode fetchMode) (DashboardSummary, error) {
	return fetchLine(ctx, o, LineSummary, mode, o.source.GetSummary,
		func(s *ViewState, v DashboardSummary) {
			s.Summary = &v
			o.summaryCache.Put(v)
			if entry, ok := o.summaryCache.Entry(); ok {
				s.SummaryFetchedAt = entry.Timestamp
			}
		})
}

// FetchSalesSeries fetches the sales series for period. On success period
// becomes the one used by later refreshes.
func (o *Orchestrator) FetchSalesSeries(ctx context.Context, period SalesPeriod) (TimeSeries[SalesPoint], error) {
	if _, err := ParseSalesPeriod(string(period)); err != nil {
		return nil, err
	}
	return o.fetchSales(ctx, period, fetchMode{operation: OpFetch})
}

func (o *Orchestrator) fetchSales(ctx context.Context, period SalesPeriod, mode fetchMode) (TimeSeries[SalesPoint], error) {
	return fetchLine(ctx, o, LineSales, mode,
		func(ctx context.Context) (TimeSeries[SalesPoint], error) {
			return o.source.GetSalesSeries(ctx, period)
		},
		func(s *ViewState, v TimeSeries[SalesPoint]) {
			s.SalesSeries = v.Clone()
			s.SalesPeriod = period
		})
}

// FetchUserGrowthSeries fetches the user growth series for period. On
// success period becomes the one used by later refreshes.
func (o *Orchestrator) FetchUserGrowthSeries(
	ctx context.Context,
	period GrowthPeriod,
) (TimeSeries[UserGrowthPoint], error) {
	if _, err := ParseGrowthPeriod(string(period)); err != nil {
		return nil, err
	}
	return o.fetchGrowth(ctx, period, fetchMode{operation: OpFetch})
}

func (o *Orchestrator) fetchGrowth(
	ctx context.Context,
	period GrowthPeriod,
	mode fetchMode,
) (TimeSeries[UserGrowthPoint], error) {
	return fetchLine(ctx, o, LineUserGrowth, mode,
		func(ctx context.Context) (TimeSeries[UserGrowthPoint], error) {
			return o.source.GetUserGrowthSeries(ctx, period)
		},
		func(s *ViewState, v TimeSeries[UserGrowthPoint]) {
			s.UserGrowthSeries = v.Clone()
			s.GrowthPeriod = period
		})
}

// FetchCategoryDistribution fetches the category distribution.
func (o *Orchestrator) FetchCategoryDistribution(ctx context.Context) (CategoryDistribution, error) {
	return o.fetchCategories(ctx, fetchMode{operation: OpFetch})
}

func (o *Orchestrator) fetchCategories(ctx context.Context, mode fetchMode) (CategoryDistribution, error) {
	return fetchLine(ctx, o, LineCategories, mode, o.source.GetCategoryDistribution,
		func(s *ViewState, v CategoryDistribution) {
			c := v.Clone()
			s.CategoryDistribution = &c
		})
}

// RefreshAll fetches all four lines concurrently, bypassing the summary
// cache, and waits for every one of them to settle. Each line is merged as
// soon as it resolves. If any line fails, the first failure in completion
// order is returned; the other lines still keep their new data.
func (o *Orchestrator) RefreshAll(ctx context.Context) error {
	return o.refreshAll(ctx, fetchMode{operation: OpRefreshAll})
}

func (o *Orchestrator) refreshAll(ctx context.Context, mode fetchMode) error {
	o.mu.Lock()
	o.summaryCache.Invalidate()
	sales, growth := o.state.SalesPeriod, o.state.GrowthPeriod
	o.mu.Unlock()

	tasks := []batch.Task{
		func(ctx context.Context) error {
			_, err := o.fetchSummary(ctx, mode)
			return err
		},
		func(ctx context.Context) error {
			_, err := o.fetchSales(ctx, sales, mode)
			return err
		},
		func(ctx context.Context) error {
			_, err := o.fetchGrowth(ctx, growth, mode)
			return err
		},
		func(ctx context.Context) error {
			_, err := o.fetchCategories(ctx, mode)
			return err
		},
	}

	o.recordProgress(batch.ProgressSnapshot{Total: len(tasks)})
	runner := batch.NewRunner().WithProgressCallback(o.recordProgress)
	out, err := runner.Settle(ctx, tasks)
	if err != nil {
		return err
	}
	if out.First != nil {
		logging.FromContext(ctx).Debug().Ctx(ctx).
			Str("component", "engine").
			Str("operation", mode.operation).
			Int("failed_lines", out.Failed()).
			Err(out.Err()).
			Msg("dashboard refresh completed with failures")
		return out.First
	}
	return nil
}

// Refresh is the manual refresh action. It runs RefreshAll under the refresh
// timeout and retry budget. Individual line failures are not notified; the
// user sees one notification if the whole action finally fails.
func (o *Orchestrator) Refresh(ctx context.Context) retry.Result[struct{}] {
	var attempts atomic.Int32
	res := retry.Run(ctx, func(ctx context.Context) (struct{}, error) {
		n := attempts.Add(1)
		return struct{}{}, o.refreshAll(withAttempt(ctx, int(n)), fetchMode{operation: OpRefresh, quiet: true})
	}, o.refreshOpts)

	if res.Success {
		o.notifier.Notify(notify.Event{
			Severity: notify.SeveritySuccess,
			Title:    "Dashboard refreshed",
		})
		return res
	}

	fe := &FetchError{Line: LineRefresh, Message: "Failed to refresh dashboard", Err: res.Err}
	o.mu.Lock()
	o.state.Err = fe
	snap := o.publishLocked()
	o.mu.Unlock()
	o.emit(snap)

	o.notifier.Error(fe.Message, fe.Detail())
	o.reporter.Report(ctx, fe, telemetry.ReportContext{
		Line:      LineRefresh.String(),
		Operation: OpRefresh,
		Attempt:   res.Attempts,
	})

	res.Err = fe
	return res
}

// Init performs the initial load. Only the first call fetches; every call
// returns the outcome of that first load.
func (o *Orchestrator) Init(ctx context.Context) error {
	o.initOnce.Do(func() {
		o.initErr = o.RefreshAll(ctx)
	})
	return o.initErr
}

// fetchLine runs one fetch for line, merging the result with apply when the
// completion is still the line's latest. Stale completions return their
// result to the caller but leave ViewState, the cache and the notifier alone.
func fetchLine[T any](
	ctx context.Context,
	o *Orchestrator,
	line Line,
	mode fetchMode,
	call func(context.Context) (T, error),
	apply func(*ViewState, T),
) (T, error) {
	log := logging.FromContext(ctx)

	o.mu.Lock()
	gen := o.lines[line].begin()
	snap := o.publishLocked()
	o.mu.Unlock()
	o.emit(snap)

	start := time.Now()
	value, err := safeCall(ctx, line, call)

	var fe *FetchError
	var lineErr error
	if err != nil {
		fe = newFetchError(line, err)
		lineErr = fe
	}
	// A quiet fetch whose context ended belongs to an abandoned refresh
	// attempt; the refresh reports the failure as a whole.
	abandoned := err != nil && mode.quiet && ctx.Err() != nil

	o.mu.Lock()
	current := false
	if abandoned {
		o.lines[line].abandon(gen)
	} else {
		current = o.lines[line].finish(gen, lineErr, o.now())
	}
	if current {
		if fe != nil {
			o.state.Err = fe
		} else {
			apply(&o.state, value)
			if prev, ok := o.state.Err.(*FetchError); ok && prev.Line == line {
				o.state.Err = nil
			}
		}
	}
	snap = o.publishLocked()
	o.mu.Unlock()
	o.emit(snap)

	log.Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", mode.operation).
		Str("line", line.String()).
		Bool("stale", !current).
		Bool("abandoned", abandoned).
		Dur("duration", time.Since(start)).
		Bool("success", err == nil).
		Msg("line fetch completed")

	if fe != nil {
		if current {
			o.reporter.Report(ctx, fe, telemetry.ReportContext{
				Line:      line.String(),
				Operation: mode.operation,
				Attempt:   attemptFromContext(ctx),
			})
			if !mode.quiet {
				o.notifier.Error(fe.Message, fe.Detail())
			}
		}
		var zero T
		return zero, fe
	}
	return value, nil
}

// publishLocked recomputes derived fields and returns a snapshot.
// The caller must hold o.mu.
func (o *Orchestrator) publishLocked() ViewState {
	loading := false
	for i := range o.lines {
		if o.lines[i].inFlight > 0 {
			loading = true
		}
		o.state.Lines[Line(i)] = o.lines[i].info
	}
	o.state.IsLoading = loading
	o.state.Revision++
	return o.state.Snapshot()
}

// recordProgress publishes the progress of the running RefreshAll.
func (o *Orchestrator) recordProgress(snap batch.ProgressSnapshot) {
	o.mu.Lock()
	o.state.LoadProgress = snap
	state := o.publishLocked()
	o.mu.Unlock()
	o.emit(state)

	if o.onProgress != nil {
		o.onProgress(snap)
	}
}

func (o *Orchestrator) emit(snap ViewState) {
	if o.onUpdate != nil {
		o.onUpdate(snap)
	}
}

// safeCall turns a panicking collaborator into an ordinary failure so the
// line's in-flight count is always released.
func safeCall[T any](ctx context.Context, line Line, call func(context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s fetch panicked: %v", line, r)
		}
	}()
	return call(ctx)
}

type attemptKey struct{}

func withAttempt(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, attemptKey{}, n)
}

func attemptFromContext(ctx context.Context) int {
	n, _ := ctx.Value(attemptKey{}).(int)
	return n
}
