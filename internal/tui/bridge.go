package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/lasercalc/internal/orchestration"
)

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so the bridge goroutine can send messages.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the bubbletea program (thread-safe).
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// sender is the part of programRef the bridge needs.
type sender interface {
	Send(msg tea.Msg)
}

// sessionBridge implements orchestration.SessionListener. SessionChanged
// stores the snapshot in a one-slot mailbox and returns immediately; a
// forwarding goroutine delivers the newest snapshot to the program. Snapshots
// that arrive while the program is busy are coalesced, never reordered.
type sessionBridge struct {
	out sender

	mu      sync.Mutex
	latest  orchestration.Session
	pending bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// Verify interface compliance.
var _ orchestration.SessionListener = (*sessionBridge)(nil)

// newSessionBridge returns a bridge that holds snapshots until start is
// called.
func newSessionBridge(out sender) *sessionBridge {
	return &sessionBridge{
		out:  out,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// start launches the forwarding goroutine. A snapshot received earlier is
// delivered first.
func (b *sessionBridge) start() {
	b.wg.Add(1)
	go b.forward()
}

// sessionSource is the part of the orchestrator the dashboard reads from.
type sessionSource interface {
	Session() orchestration.Session
	Subscribe(l orchestration.SessionListener) (cancel func())
}

// attachBridge subscribes a new bridge to src and only then reads the
// initial snapshot, so a transition landing in between is held by the
// bridge rather than lost.
func attachBridge(src sessionSource, out sender) (*sessionBridge, orchestration.Session, func()) {
	b := newSessionBridge(out)
	cancel := src.Subscribe(b)
	return b, src.Session(), cancel
}

// SessionChanged records s as the newest snapshot.
func (b *sessionBridge) SessionChanged(s orchestration.Session) {
	b.mu.Lock()
	if b.pending && s.Version < b.latest.Version {
		b.mu.Unlock()
		return
	}
	b.latest = s
	b.pending = true
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *sessionBridge) forward() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
		}
		b.mu.Lock()
		s, ok := b.latest, b.pending
		b.pending = false
		b.mu.Unlock()
		if ok {
			b.out.Send(SessionMsg{Session: s})
		}
	}
}

// Close stops the forwarding goroutine. Snapshots not yet delivered are
// dropped.
func (b *sessionBridge) Close() {
	b.once.Do(func() { close(b.done) })
	b.wg.Wait()
}
