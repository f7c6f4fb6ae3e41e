package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"

	"github.com/ghuser/invoiceledger/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		ServiceName:    "invoice-ledger",
		ServiceVersion: "test",
		Environment:    config.EnvTesting,
	}
}

func setup(t *testing.T) *Providers {
	t.Helper()
	p, err := Setup(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() {
		if err := p.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	})
	return p
}

func scrape(t *testing.T, p *Providers) string {
	t.Helper()
	rr := httptest.NewRecorder()
	p.MetricsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rr.Code)
	}
	return rr.Body.String()
}

func TestSetup_ExposesRuntimeAndLedgerMetrics(t *testing.T) {
	p := setup(t)

	counter, err := Meter("telemetry-test").Int64Counter("ledger_test_items_added")
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	counter.Add(context.Background(), 3)

	body := scrape(t, p)
	for _, want := range []string{"go_goroutines", "ledger_test_items_added"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestSetup_RegistriesAreIsolated(t *testing.T) {
	// Two setups in one process must not collide on registration.
	setup(t)
	setup(t)
}

func TestSetup_InstallsTraceContextPropagator(t *testing.T) {
	setup(t)
	if fields := otel.GetTextMapPropagator().Fields(); !slices.Contains(fields, "traceparent") {
		t.Errorf("propagator fields = %v, want traceparent", fields)
	}
}

func TestSampleRatio(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 1},
		{-0.5, 1},
		{1.5, 1},
		{0.25, 0.25},
		{1, 1},
	}
	for _, tt := range tests {
		if got := sampleRatio(tt.in); got != tt.want {
			t.Errorf("sampleRatio(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDropCancellations(t *testing.T) {
	event := &sentry.Event{Message: "x"}
	tests := []struct {
		name string
		hint *sentry.EventHint
		keep bool
	}{
		{"no hint", nil, true},
		{"plain error", &sentry.EventHint{OriginalException: errors.New("db down")}, true},
		{"canceled", &sentry.EventHint{OriginalException: context.Canceled}, false},
		{"wrapped canceled", &sentry.EventHint{OriginalException: fmt.Errorf("query: %w", context.Canceled)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dropCancellations(event, tt.hint)
			if (got != nil) != tt.keep {
				t.Errorf("kept = %v, want %v", got != nil, tt.keep)
			}
		})
	}
}

func TestSetupSentry_EmptyDSNIsNoop(t *testing.T) {
	if err := SetupSentry(testConfig()); err != nil {
		t.Fatalf("SetupSentry: %v", err)
	}
	CaptureError(context.Background(), errors.New("unreported"))
}
