//go:generate mockgen -source=interfaces.go -destination=mocks/mock_estimator.go -package=mocks

package orchestration

import (
	"context"

	"github.com/agbru/lasercalc/internal/params"
	"github.com/agbru/lasercalc/internal/report"
	"github.com/agbru/lasercalc/internal/selection"
)

// Estimator computes a report for one drawing and one parameter set.
// *estimator.Client is the production implementation.
//
// Implementations should honour ctx: the orchestrator cancels the context of
// a request as soon as a newer one supersedes it.
type Estimator interface {
	Compute(ctx context.Context, file selection.SourceFile, p params.MachineParameters) (report.Report, error)
}

// SessionListener receives every session snapshot, in the order the
// transitions happened. Listeners run on the goroutine that caused the
// transition and must not block or synchronously edit the parameters or the
// selection.
type SessionListener interface {
	SessionChanged(s Session)
}

// SessionListenerFunc is a function adapter that implements SessionListener.
type SessionListenerFunc func(s Session)

// SessionChanged calls the underlying function.
func (f SessionListenerFunc) SessionChanged(s Session) { f(s) }
