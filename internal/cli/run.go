package cli

import (
	"context"
	"errors"
	"io"

	"github.com/briandowns/spinner"

	"github.com/agbru/lasercalc/internal/config"
	apperrors "github.com/agbru/lasercalc/internal/errors"
	"github.com/agbru/lasercalc/internal/orchestration"
	"github.com/agbru/lasercalc/internal/selection"
)

// ErrSelectionDisabled is returned when the drawing cannot be selected
// because a request is already outstanding.
var ErrSelectionDisabled = errors.New("drawing selection is disabled while a request is outstanding")

// SessionSource is the part of the orchestrator the one-shot flow observes.
type SessionSource interface {
	Session() orchestration.Session
	Subscribe(l orchestration.SessionListener) (cancel func())
}

// HealthChecker probes the estimation service.
type HealthChecker interface {
	Health(ctx context.Context) error
	BaseURL() string
}

// Run loads cfg.File, hands it to the selection and waits for the first
// terminal session. The report is printed as a table, a single line in quiet
// mode, or JSON. A failed session is returned as its error so the caller can
// map it to an exit code.
func Run(ctx context.Context, cfg config.AppConfig, files *selection.Selection, sessions SessionSource, out io.Writer) error {
	file, err := selection.LoadFile(cfg.File)
	if err != nil {
		return apperrors.NewConfigError("cannot read drawing %q: %v", cfg.File, err)
	}
	verbose := !cfg.Quiet && !cfg.JSON
	if verbose {
		PrintExecutionConfig(cfg, file, out)
	}

	done := make(chan orchestration.Session, 1)
	cancel := sessions.Subscribe(orchestration.SessionListenerFunc(func(s orchestration.Session) {
		if !s.State.Terminal() {
			return
		}
		select {
		case done <- s:
		default:
		}
	}))
	defer cancel()

	var s Spinner
	if verbose {
		s = newSpinner(spinner.WithWriter(out))
		s.UpdateSuffix(" Estimating " + file.Name)
		s.Start()
	}
	stop := func() {
		if s != nil {
			s.Stop()
		}
	}

	if _, ok := files.Select(file); !ok {
		stop()
		return ErrSelectionDisabled
	}

	var session orchestration.Session
	select {
	case session = <-done:
	case <-ctx.Done():
		stop()
		return apperrors.WrapError(ctx.Err(), "estimation interrupted")
	}
	stop()
	return present(out, cfg, session)
}

func present(out io.Writer, cfg config.AppConfig, s orchestration.Session) error {
	if cfg.JSON {
		if err := DisplayJSON(out, s); err != nil {
			return err
		}
		return s.Err
	}
	if s.State == orchestration.StateFailed {
		return s.Err
	}
	if s.Report == nil {
		return errors.New("estimation finished without a report")
	}
	if cfg.Quiet {
		DisplayQuietResult(out, *s.Report)
		return nil
	}
	DisplayReport(out, *s.Report)
	return nil
}

// Check probes the service's health endpoint and reports the outcome.
func Check(ctx context.Context, hc HealthChecker, out io.Writer) error {
	if err := hc.Health(ctx); err != nil {
		return err
	}
	DisplayHealth(out, hc.BaseURL())
	return nil
}
