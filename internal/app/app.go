package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/lasercalc/internal/cli"
	"github.com/agbru/lasercalc/internal/config"
	apperrors "github.com/agbru/lasercalc/internal/errors"
	"github.com/agbru/lasercalc/internal/estimator"
	"github.com/agbru/lasercalc/internal/logging"
	"github.com/agbru/lasercalc/internal/metrics"
	"github.com/agbru/lasercalc/internal/orchestration"
	"github.com/agbru/lasercalc/internal/params"
	"github.com/agbru/lasercalc/internal/selection"
	"github.com/agbru/lasercalc/internal/server"
	"github.com/agbru/lasercalc/internal/tui"
	"github.com/agbru/lasercalc/internal/ui"
)

// Application represents the lasercalc application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer

	program    string
	httpClient *http.Client
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithHTTPClient sets the HTTP client used to reach the estimation service.
func WithHTTPClient(hc *http.Client) AppOption {
	return func(a *Application) { a.httpClient = hc }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, program: "lasercalc"}
	for _, opt := range opts {
		opt(app)
	}

	var cmdArgs []string
	if len(args) > 0 {
		app.program = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(app.program, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)

	logger, closeLog, err := a.newLogger()
	if err != nil {
		return a.fail(logging.NewNopLogger(), err)
	}
	defer closeLog()

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	m := metrics.NewMetrics()
	opts := []estimator.Option{
		estimator.WithTimeout(a.Config.Timeout),
		estimator.WithLogger(logger.With("estimator")),
		estimator.WithMetrics(m),
	}
	if a.httpClient != nil {
		opts = append(opts, estimator.WithHTTPClient(a.httpClient))
	}
	client, err := estimator.NewClient(a.Config.URL, opts...)
	if err != nil {
		return a.fail(logger, err)
	}

	if a.Config.Check {
		err = cli.Check(ctx, client, out)
	} else {
		err = a.runSession(ctx, out, client, m, logger)
	}
	if ctx.Err() != nil && apperrors.IsContextError(err) {
		logger.Debug("run interrupted", logging.Err(err))
		fmt.Fprintln(a.ErrWriter, "Interrupted.")
		return apperrors.ExitErrorCanceled
	}
	return a.fail(logger, err)
}

// runSession wires the parameter store, the selection and the orchestrator,
// then runs the one-shot or interactive surface next to the optional status
// endpoint.
func (a *Application) runSession(ctx context.Context, out io.Writer, est orchestration.Estimator, m *metrics.Metrics, logger *logging.ZerologAdapter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	store := params.NewStore(a.Config.Params)
	files := selection.New()
	orch := orchestration.New(gctx, est, store, files,
		orchestration.WithLogger(logger.With("orchestrator")),
		orchestration.WithMetrics(m),
	)
	defer orch.Close()

	if a.Config.MetricsAddr != "" {
		srv := server.New(a.Config.MetricsAddr, m, orch, logger.With("server"))
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	g.Go(func() error {
		defer cancel()
		if a.Config.TUI {
			if a.Config.File != "" {
				f, err := selection.LoadFile(a.Config.File)
				if err != nil {
					return apperrors.NewConfigError("cannot read drawing %q: %v", a.Config.File, err)
				}
				files.Select(f)
			}
			return tui.Run(gctx, store, files, orch, Version)
		}
		return cli.Run(gctx, a.Config, files, orch, out)
	})
	return g.Wait()
}

// newLogger builds the application logger. The one-shot mode logs to
// ErrWriter; the dashboard logs to LogFile, or nowhere, so the alternate
// screen stays intact.
func (a *Application) newLogger() (*logging.ZerologAdapter, func(), error) {
	level := logging.ParseLevel(a.Config.LogLevel)
	if !a.Config.TUI {
		return logging.NewConsoleLogger(a.ErrWriter).Level(level), func() {}, nil
	}
	if a.Config.LogFile == "" {
		return logging.NewNopLogger(), func() {}, nil
	}
	f, err := os.OpenFile(a.Config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, apperrors.NewConfigError("cannot open log file %q: %v", a.Config.LogFile, err)
	}
	return logging.NewLogger(f, "lasercalc").Level(level), func() { _ = f.Close() }, nil
}

// fail reports err on ErrWriter and maps it to an exit code.
func (a *Application) fail(logger logging.Logger, err error) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	code := apperrors.ExitCode(err)
	logger.Debug("run finished with error", logging.Err(err), logging.Int("exit_code", code))
	fmt.Fprintf(a.ErrWriter, "Error: %s\n", apperrors.UserMessage(err))
	return code
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, programName(a.program), a.Config.Completion); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
