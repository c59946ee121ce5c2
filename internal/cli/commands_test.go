package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/adminboard/internal/adminapi"
	"github.com/rshade/adminboard/internal/config"
	"github.com/rshade/adminboard/internal/engine"
)

// fakeSource implements dashboardSource without a network.
type fakeSource struct {
	mu sync.Mutex

	summaryCalls  int
	salesPeriods  []engine.SalesPeriod
	growthPeriods []engine.GrowthPeriod
	listOpts      []adminapi.ListOptions
	approved      []string
	rejected      map[string]string

	verifications []adminapi.Verification
	failAll       bool
	failLines     map[engine.Line]error
}

func (f *fakeSource) fail(line engine.Line) error {
	if f.failAll {
		return errors.New("api unreachable")
	}
	return f.failLines[line]
}

func (f *fakeSource) GetSummary(context.Context) (engine.DashboardSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls++
	if err := f.fail(engine.LineSummary); err != nil {
		return engine.DashboardSummary{}, err
	}
	return engine.DashboardSummary{TotalUsers: 42, TotalOrders: 7, PendingVerifications: 3}, nil
}

func (f *fakeSource) GetSalesSeries(_ context.Context, p engine.SalesPeriod) (engine.TimeSeries[engine.SalesPoint], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.salesPeriods = append(f.salesPeriods, p)
	if err := f.fail(engine.LineSales); err != nil {
		return nil, err
	}
	return engine.TimeSeries[engine.SalesPoint]{{Date: "2026-09", Revenue: 12.5, Orders: 3}}, nil
}

func (f *fakeSource) GetUserGrowthSeries(
	_ context.Context,
	p engine.GrowthPeriod,
) (engine.TimeSeries[engine.UserGrowthPoint], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.growthPeriods = append(f.growthPeriods, p)
	if err := f.fail(engine.LineUserGrowth); err != nil {
		return nil, err
	}
	return engine.TimeSeries[engine.UserGrowthPoint]{{Date: "2026-W38", NewUsers: 4, TotalUsers: 42}}, nil
}

func (f *fakeSource) GetCategoryDistribution(context.Context) (engine.CategoryDistribution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(engine.LineCategories); err != nil {
		return engine.CategoryDistribution{}, err
	}
	return engine.NewCategoryDistribution([]string{"Cement", "Steel"}, []float64{6, 2}), nil
}

func (f *fakeSource) ListVerifications(_ context.Context, opts adminapi.ListOptions) ([]adminapi.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listOpts = append(f.listOpts, opts)
	return f.verifications, nil
}

func (f *fakeSource) ApproveVerification(_ context.Context, id string) (adminapi.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, id)
	return adminapi.Verification{ID: id, Status: adminapi.VerificationApproved}, nil
}

func (f *fakeSource) RejectVerification(_ context.Context, id, reason string) (adminapi.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejected == nil {
		f.rejected = make(map[string]string)
	}
	f.rejected[id] = reason
	return adminapi.Verification{ID: id, Status: adminapi.VerificationRejected}, nil
}

// setupCLITest isolates config, TTY detection and the API client.
func setupCLITest(t *testing.T, src *fakeSource) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvConfigFile, "")
	for _, k := range []string{
		config.EnvAPIURL, config.EnvAPIToken, config.EnvLogFormat, config.EnvOTelEndpoint, "ADMINBOARD_CACHE_TTL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv(config.EnvLogLevel, "error")

	config.ResetGlobalConfigForTest()
	prevFactory, prevOut, prevIn := sourceFactory, isInteractiveOutput, isInteractiveInput
	sourceFactory = func(*config.Config) (dashboardSource, error) { return src, nil }
	isInteractiveOutput = func() bool { return false }
	isInteractiveInput = func() bool { return false }
	t.Cleanup(func() {
		sourceFactory, isInteractiveOutput, isInteractiveInput = prevFactory, prevOut, prevIn
		config.ResetGlobalConfigForTest()
	})
	return home
}

func executeCmd(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSummaryCmd(t *testing.T) {
	src := &fakeSource{}
	setupCLITest(t, src)

	out, _, err := executeCmd(t, "", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Total users")
	assert.Contains(t, out, "42")
	assert.Equal(t, 1, src.summaryCalls)
}

func TestSummaryCmd_JSON(t *testing.T) {
	setupCLITest(t, &fakeSource{})

	out, _, err := executeCmd(t, "", "summary", "--force", "--output", "json")
	require.NoError(t, err)

	var got engine.DashboardSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 42, got.TotalUsers)
}

func TestSummaryCmd_Failure(t *testing.T) {
	setupCLITest(t, &fakeSource{failAll: true})

	_, _, err := executeCmd(t, "", "summary")
	require.Error(t, err)
	var fe *engine.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, engine.LineSummary, fe.Line)
}

func TestSummaryCmd_BadOutput(t *testing.T) {
	setupCLITest(t, &fakeSource{})
	_, _, err := executeCmd(t, "", "summary", "--output", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestSeriesCmd(t *testing.T) {
	src := &fakeSource{}
	setupCLITest(t, src)

	out, _, err := executeCmd(t, "", "series", "sales", "--period", "week")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-09")
	assert.Equal(t, []engine.SalesPeriod{engine.SalesWeek}, src.salesPeriods)

	out, _, err = executeCmd(t, "", "series", "growth")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-W38")
	assert.Equal(t, []engine.GrowthPeriod{engine.GrowthMonth}, src.growthPeriods)
}

func TestSeriesCmd_InvalidInput(t *testing.T) {
	setupCLITest(t, &fakeSource{})

	_, _, err := executeCmd(t, "", "series", "growth", "--period", "day")
	require.ErrorIs(t, err, engine.ErrInvalidPeriod)

	_, _, err = executeCmd(t, "", "series", "orders")
	require.Error(t, err)
}

func TestCategoriesCmd_JSON(t *testing.T) {
	setupCLITest(t, &fakeSource{})

	out, _, err := executeCmd(t, "", "categories", "--output", "json")
	require.NoError(t, err)

	var got engine.CategoryDistribution
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"Cement", "Steel"}, got.Labels)
	assert.Equal(t, []string{"#FF6384", "#36A2EB"}, got.Dataset().BackgroundColor)
}

func TestDashboardCmd_Plain(t *testing.T) {
	src := &fakeSource{}
	setupCLITest(t, src)

	out, _, err := executeCmd(t, "", "dashboard", "--sales-period", "day")
	require.NoError(t, err)
	assert.Contains(t, out, "SUMMARY")
	assert.Contains(t, out, "SALES (day)")
	assert.Contains(t, out, "USER GROWTH (month)")
	assert.Contains(t, out, "Cement")
	assert.Equal(t, []engine.SalesPeriod{engine.SalesDay}, src.salesPeriods)
}

func TestDashboardCmd_PartialFailure(t *testing.T) {
	setupCLITest(t, &fakeSource{failLines: map[engine.Line]error{
		engine.LineCategories: errors.New("categories down"),
	}})

	out, errOut, err := executeCmd(t, "", "dashboard", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "error: Failed to load category distribution")
	assert.Contains(t, errOut, "error: Failed to load category distribution: categories down")
	assert.Contains(t, out, "Total users")
}

func TestDashboardCmd_AllFailed(t *testing.T) {
	setupCLITest(t, &fakeSource{failAll: true})

	_, _, err := executeCmd(t, "", "dashboard", "--plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading dashboard")
}

func TestDashboardCmd_JSON(t *testing.T) {
	setupCLITest(t, &fakeSource{failLines: map[engine.Line]error{
		engine.LineSales: errors.New("sales down"),
	}})

	out, _, err := executeCmd(t, "", "dashboard", "--output", "json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "summary")
	errs, ok := doc["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "sales")
}

func TestDashboardCmd_InvalidPeriod(t *testing.T) {
	setupCLITest(t, &fakeSource{})
	_, _, err := executeCmd(t, "", "dashboard", "--growth-period", "day")
	require.ErrorIs(t, err, engine.ErrInvalidPeriod)
}

func TestVerificationsList(t *testing.T) {
	src := &fakeSource{verifications: []adminapi.Verification{
		{ID: "v1", CompanyName: "Acme Supplies", Email: "ops@acme.test", DocumentType: "license", Status: "pending"},
	}}
	setupCLITest(t, src)

	out, _, err := executeCmd(t, "", "verifications", "list", "--limit", "5", "--sort", "-submittedAt")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme Supplies")
	assert.Contains(t, out, "1 request(s)")
	require.Len(t, src.listOpts, 1)
	assert.Equal(t, adminapi.ListOptions{Status: adminapi.VerificationPending, Limit: 5, Sort: "-submittedAt"}, src.listOpts[0])

	_, _, err = executeCmd(t, "", "verifications", "list", "--status", "all")
	require.NoError(t, err)
	assert.Empty(t, src.listOpts[1].Status)
}

func TestVerificationsList_Empty(t *testing.T) {
	setupCLITest(t, &fakeSource{})
	out, _, err := executeCmd(t, "", "verifications", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No verification requests found.")
}

func TestVerificationsList_BadStatus(t *testing.T) {
	setupCLITest(t, &fakeSource{})
	_, _, err := executeCmd(t, "", "verifications", "list", "--status", "lost")
	require.Error(t, err)
}

func TestVerificationsApprove_RequiresConfirmation(t *testing.T) {
	src := &fakeSource{}
	setupCLITest(t, src)

	_, _, err := executeCmd(t, "", "verifications", "approve", "v1")
	require.ErrorIs(t, err, ErrNotConfirmed)
	assert.Empty(t, src.approved)
}

func TestVerificationsApprove_Yes(t *testing.T) {
	src := &fakeSource{}
	setupCLITest(t, src)

	out, _, err := executeCmd(t, "", "verifications", "approve", "v1", "--yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, src.approved)
	assert.Contains(t, out, "Verification v1 approved")
	assert.Contains(t, out, "Pending verifications: 3")
	assert.Equal(t, 1, src.summaryCalls)
}

func TestVerificationsReject_Prompted(t *testing.T) {
	src := &fakeSource{}
	setupCLITest(t, src)
	isInteractiveInput = func() bool { return true }

	out, errOut, err := executeCmd(t, "y\n", "verifications", "reject", "v2", "--reason", "expired licence")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Reject verification v2?")
	assert.Contains(t, out, "Verification v2 rejected")
	assert.Equal(t, "expired licence", src.rejected["v2"])
}

func TestVerificationsReject_Declined(t *testing.T) {
	src := &fakeSource{}
	setupCLITest(t, src)
	isInteractiveInput = func() bool { return true }

	_, _, err := executeCmd(t, "n\n", "verifications", "reject", "v2", "--reason", "x")
	require.ErrorIs(t, err, ErrNotConfirmed)
	assert.Empty(t, src.rejected)
}

func TestVerificationsReject_ReasonRequired(t *testing.T) {
	setupCLITest(t, &fakeSource{})
	_, _, err := executeCmd(t, "", "verifications", "reject", "v2", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reason")
}

func TestConfigInit(t *testing.T) {
	home := setupCLITest(t, &fakeSource{})

	out, _, err := executeCmd(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized successfully")
	_, statErr := os.Stat(filepath.Join(home, "config.yaml"))
	require.NoError(t, statErr)

	_, _, err = executeCmd(t, "", "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCmd(t, "", "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigSetGet(t *testing.T) {
	setupCLITest(t, &fakeSource{})

	_, _, err := executeCmd(t, "", "config", "set", "dashboard.cache_ttl", "10m")
	require.NoError(t, err)

	config.ResetGlobalConfigForTest()
	out, _, err := executeCmd(t, "", "config", "get", "dashboard.cache_ttl")
	require.NoError(t, err)
	assert.Equal(t, "10m0s\n", out)
}

func TestConfigSet_RejectsInvalid(t *testing.T) {
	home := setupCLITest(t, &fakeSource{})

	_, _, err := executeCmd(t, "", "config", "set", "dashboard.cache_ttl", "5s")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	_, statErr := os.Stat(filepath.Join(home, "config.yaml"))
	assert.True(t, os.IsNotExist(statErr))

	_, _, err = executeCmd(t, "", "config", "set", "nope.key", "1")
	require.ErrorIs(t, err, config.ErrUnknownKey)
}

func TestConfigList_MasksToken(t *testing.T) {
	setupCLITest(t, &fakeSource{})
	t.Setenv(config.EnvAPIToken, "very-secret")

	out, _, err := executeCmd(t, "", "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "api.token = ********")
	assert.NotContains(t, out, "very-secret")
}

func TestConfigValidate(t *testing.T) {
	home := setupCLITest(t, &fakeSource{})

	out, _, err := executeCmd(t, "", "config", "validate", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Cache TTL")

	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"),
		[]byte("dashboard:\n  sales_period: decade\n"), 0o600))
	config.ResetGlobalConfigForTest()
	_, _, err = executeCmd(t, "", "config", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard.sales_period")
}

func TestConfigOverlay(t *testing.T) {
	setupCLITest(t, &fakeSource{})
	overlay := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(overlay, []byte("output:\n  default_format: json\n  precision: 2\n"), 0o600))

	out, _, err := executeCmd(t, "", "--config", overlay, "summary")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"), out)

	_, _, err = executeCmd(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "summary")
	require.Error(t, err)
}

func TestConfirm(t *testing.T) {
	prev := isInteractiveInput
	t.Cleanup(func() { isInteractiveInput = prev })

	isInteractiveInput = func() bool { return false }
	assert.True(t, Confirm(&bytes.Buffer{}, strings.NewReader("y\n"), "ok?").NonInteractive)

	isInteractiveInput = func() bool { return true }
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"\n", false},
		{"no\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		res := Confirm(&out, strings.NewReader(tt.input), "Proceed?")
		assert.Equal(t, tt.want, res.Accepted, "input %q", tt.input)
		assert.Contains(t, out.String(), "Proceed? [y/N]")
	}
}
