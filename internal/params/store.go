package params

import "sync"

// Observer is notified with the new snapshot after every change.
type Observer interface {
	ParametersChanged(p MachineParameters)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(p MachineParameters)

// ParametersChanged calls f(p).
func (f ObserverFunc) ParametersChanged(p MachineParameters) { f(p) }

// Store holds the current parameter set for a session and notifies
// subscribers when it changes. The held value is only ever replaced, never
// mutated in place.
type Store struct {
	mu        sync.RWMutex
	current   MachineParameters
	observers map[uint64]Observer
	nextID    uint64
}

// NewStore creates a store holding a sanitised copy of initial.
func NewStore(initial MachineParameters) *Store {
	return &Store{
		current:   initial.Sanitize(),
		observers: make(map[uint64]Observer),
	}
}

// Current returns the current snapshot.
func (s *Store) Current() MachineParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update coerces raw into field f and publishes the new snapshot. Edits that
// leave the snapshot unchanged do not notify.
func (s *Store) Update(f Field, raw string) MachineParameters {
	return s.replace(func(p MachineParameters) MachineParameters { return p.Update(f, raw) })
}

// Set replaces the whole parameter set.
func (s *Store) Set(p MachineParameters) MachineParameters {
	return s.replace(func(MachineParameters) MachineParameters { return p.Sanitize() })
}

func (s *Store) replace(next func(MachineParameters) MachineParameters) MachineParameters {
	s.mu.Lock()
	prev := s.current
	updated := next(prev)
	if updated == prev {
		s.mu.Unlock()
		return updated
	}
	s.current = updated
	observers := s.snapshotObservers()
	s.mu.Unlock()

	for _, o := range observers {
		o.ParametersChanged(updated)
	}
	return updated
}

// Subscribe registers o and returns a function that removes it.
func (s *Store) Subscribe(o Observer) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// snapshotObservers copies the observer set in registration order; callers
// hold s.mu.
func (s *Store) snapshotObservers() []Observer {
	out := make([]Observer, 0, len(s.observers))
	for id := uint64(0); id < s.nextID; id++ {
		if o, ok := s.observers[id]; ok {
			out = append(out, o)
		}
	}
	return out
}
