package orchestration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/lasercalc/internal/logging"
	"github.com/agbru/lasercalc/internal/metrics"
	"github.com/agbru/lasercalc/internal/params"
	"github.com/agbru/lasercalc/internal/report"
	"github.com/agbru/lasercalc/internal/selection"
)

// Orchestrator drives the session state machine:
//
//	Idle      --file selected-->           Computing
//	Computing --newer change-->            Computing (previous request superseded)
//	Computing --report-->                  Success
//	Computing --error-->                   Failed
//	Success|Failed --param or file change--> Computing
//
// While a request is outstanding the file selection is disabled. Parameter
// edits are still accepted and supersede the outstanding request.
type Orchestrator struct {
	est     Estimator
	store   *params.Store
	files   *selection.Selection
	logger  logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() uuid.UUID

	ctx context.Context

	mu        sync.Mutex
	session   Session
	cancelReq context.CancelFunc
	closed    bool
	listeners map[uint64]SessionListener
	nextID    uint64

	// notifyMu is taken before mu is released so that listeners observe
	// snapshots in transition order.
	notifyMu sync.Mutex

	wg          sync.WaitGroup
	unsubscribe []func()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records discarded responses in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock overrides time.Now for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an orchestrator bound to store and files. Cancelling ctx
// cancels any outstanding request. If a file is already selected, a
// computation is issued immediately; otherwise the session starts Idle.
func New(ctx context.Context, est Estimator, store *params.Store, files *selection.Selection, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		est:       est,
		store:     store,
		files:     files,
		logger:    logging.NewNopLogger(),
		now:       time.Now,
		newID:     uuid.New,
		ctx:       ctx,
		listeners: make(map[uint64]SessionListener),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.mu.Lock()
	o.session = Session{State: StateIdle, Params: store.Current()}
	if f, ok := files.Current(); ok {
		o.session.File = &f
		o.issueLocked("initial")
	}
	o.mu.Unlock()

	o.unsubscribe = []func(){
		store.Subscribe(params.ObserverFunc(o.parametersChanged)),
		files.Subscribe(selection.ObserverFunc(o.fileSelected)),
	}
	return o
}

// Session returns the current snapshot.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Subscribe registers l and returns a function that removes it.
func (o *Orchestrator) Subscribe(l SessionListener) (cancel func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = l
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.listeners, id)
			o.mu.Unlock()
		})
	}
}

// Recompute re-issues the latest request with the current inputs. It does
// nothing while no file is selected.
func (o *Orchestrator) Recompute() {
	o.mu.Lock()
	if !o.issueLocked("recompute") {
		o.mu.Unlock()
		return
	}
	o.publishLocked()
}

// Wait blocks until every launched computation has returned.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close detaches from the inputs, cancels the outstanding request and waits
// for running computations. Responses arriving after Close are dropped.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		o.wg.Wait()
		return
	}
	o.closed = true
	if o.cancelReq != nil {
		o.cancelReq()
		o.cancelReq = nil
	}
	unsubscribe := o.unsubscribe
	o.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
	o.files.SetEnabled(true)
	o.wg.Wait()
}

func (o *Orchestrator) parametersChanged(params.MachineParameters) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.session.Params = o.store.Current()
	o.issueLocked("parameters changed")
	o.publishLocked()
}

func (o *Orchestrator) fileSelected(f selection.SourceFile) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.session.File = &f
	o.session.Report = nil
	o.issueLocked("file selected")
	o.publishLocked()
}

// issueLocked starts a computation for the current inputs. It reports false
// when there is no file to compute. o.mu must be held.
func (o *Orchestrator) issueLocked(reason string) bool {
	if o.closed || o.session.File == nil {
		return false
	}
	if o.cancelReq != nil {
		o.cancelReq()
	}

	o.session.Seq++
	req := ComputationRequest{
		ID:       o.newID(),
		Seq:      o.session.Seq,
		File:     *o.session.File,
		Params:   o.session.Params,
		IssuedAt: o.now(),
	}
	ctx, cancel := context.WithCancel(o.ctx)
	o.cancelReq = cancel

	o.session.State = StateComputing
	o.session.Loading = true
	o.session.Err = nil
	o.session.RequestID = req.ID
	o.session.IssuedAt = req.IssuedAt
	o.session.Elapsed = 0
	o.files.SetEnabled(false)

	o.logger.Debug("issuing computation",
		logging.String("reason", reason),
		logging.String("request_id", req.ID.String()),
		logging.Uint64("seq", req.Seq),
		logging.String("file", req.File.Name),
	)

	o.wg.Add(1)
	go o.run(ctx, cancel, req)
	return true
}

func (o *Orchestrator) run(ctx context.Context, cancel context.CancelFunc, req ComputationRequest) {
	defer o.wg.Done()
	defer cancel()
	rep, err := o.est.Compute(ctx, req.File, req.Params)
	o.complete(req, rep, err)
}

func (o *Orchestrator) complete(req ComputationRequest, rep report.Report, err error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	if req.Seq != o.session.Seq {
		latest := o.session.Seq
		o.mu.Unlock()
		o.metrics.RecordStale()
		o.logger.Debug("discarding superseded response",
			logging.String("request_id", req.ID.String()),
			logging.Uint64("seq", req.Seq),
			logging.Uint64("latest_seq", latest),
		)
		return
	}

	o.cancelReq = nil
	o.session.Loading = false
	o.session.Elapsed = o.now().Sub(req.IssuedAt)
	if err != nil {
		o.session.State = StateFailed
		o.session.Report = nil
		o.session.Err = err
		o.logger.Info("computation failed",
			logging.String("request_id", req.ID.String()),
			logging.String("message", o.session.ErrorMessage()),
			logging.Float64("elapsed_s", o.session.Elapsed.Seconds()),
		)
	} else {
		o.session.State = StateSuccess
		o.session.Report = &rep
		o.session.Err = nil
		o.logger.Info("computation complete",
			logging.String("request_id", req.ID.String()),
			logging.String("formatted_time", rep.FormattedTime),
			logging.Float64("elapsed_s", o.session.Elapsed.Seconds()),
		)
	}
	o.files.SetEnabled(true)
	o.publishLocked()
}

// publishLocked bumps the version, releases o.mu and delivers the snapshot to
// every listener.
func (o *Orchestrator) publishLocked() {
	o.session.Version++
	snap := o.session
	listeners := make([]SessionListener, 0, len(o.listeners))
	for id := uint64(0); id < o.nextID; id++ {
		if l, ok := o.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	o.notifyMu.Lock()
	o.mu.Unlock()
	defer o.notifyMu.Unlock()

	for _, l := range listeners {
		l.SessionChanged(snap)
	}
}
