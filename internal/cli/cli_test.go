package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/briandowns/spinner"

	"github.com/agbru/lasercalc/internal/config"
	"github.com/agbru/lasercalc/internal/orchestration"
	"github.com/agbru/lasercalc/internal/params"
	"github.com/agbru/lasercalc/internal/report"
	"github.com/agbru/lasercalc/internal/selection"
	"github.com/agbru/lasercalc/internal/ui"
)

// MockSpinner records the calls made by the one-shot flow.
type MockSpinner struct {
	mu      sync.Mutex
	started bool
	stopped bool
	suffix  string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suffix = suffix
}

// useSpinner replaces newSpinner for the duration of the test.
func useSpinner(t *testing.T) *MockSpinner {
	t.Helper()
	original := newSpinner
	mock := &MockSpinner{}
	newSpinner = func(...spinner.Option) Spinner { return mock }
	t.Cleanup(func() { newSpinner = original })
	return mock
}

// useTheme installs th for the duration of the test.
func useTheme(t *testing.T, th ui.Theme) {
	t.Helper()
	original := ui.GetCurrentTheme()
	ui.SetCurrentTheme(th)
	t.Cleanup(func() { ui.SetCurrentTheme(original) })
}

// estimatorFunc adapts a function to orchestration.Estimator.
type estimatorFunc func(ctx context.Context, f selection.SourceFile, p params.MachineParameters) (report.Report, error)

func (fn estimatorFunc) Compute(ctx context.Context, f selection.SourceFile, p params.MachineParameters) (report.Report, error) {
	return fn(ctx, f, p)
}

func sampleReport() report.Report {
	total := 83.5
	return report.Report{
		FormattedTime:          "00:01:23",
		TransitTimeSeconds:     5.3,
		TotalDistanceBurnedMM:  1234.56,
		TotalDistanceTransitMM: 310,
		Layers: report.Layers{
			Cut:    report.Timed{Time: 12.34, Distance: 800},
			Mark:   report.Timed{Time: 20, Distance: 434.56},
			Raster: report.Raster{Time: 45.9, Area: 100},
		},
		EstimatedTotalSeconds: &total,
	}
}

// writeDrawing creates an SVG file in a temporary directory.
func writeDrawing(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plate.svg")
	if err := os.WriteFile(path, []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`), 0o600); err != nil {
		t.Fatalf("write drawing: %v", err)
	}
	return path
}

// newSession wires a real orchestrator around est with default parameters.
func newSession(t *testing.T, est orchestration.Estimator) (*selection.Selection, *orchestration.Orchestrator) {
	t.Helper()
	files := selection.New()
	return files, newOrchestrator(t, est, params.NewStore(params.Defaults()), files)
}

func newOrchestrator(t *testing.T, est orchestration.Estimator, store *params.Store, files *selection.Selection) *orchestration.Orchestrator {
	t.Helper()
	orch := orchestration.New(context.Background(), est, store, files)
	t.Cleanup(orch.Close)
	return orch
}

func baseConfig(file string) config.AppConfig {
	return config.AppConfig{
		URL:      config.DefaultURL,
		Timeout:  config.DefaultTimeout,
		File:     file,
		LogLevel: "info",
		Params:   params.Defaults(),
	}
}

type fakeHealth struct {
	err error
}

func (f fakeHealth) Health(context.Context) error { return f.err }
func (f fakeHealth) BaseURL() string              { return "http://svc" }

var errUnreachable = errors.New("connection refused")
