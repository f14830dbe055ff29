// Package selection holds the single drawing an operator has chosen for
// estimation.
package selection

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SVGMediaType is the media type declared for vector drawings.
const SVGMediaType = "image/svg+xml"

// SourceFile is an uploaded drawing. It is never mutated after construction.
type SourceFile struct {
	// Name is the file name sent to the service.
	Name string
	// MediaType is the declared media type of Data.
	MediaType string
	data      []byte
}

// NewSourceFile creates a SourceFile holding a private copy of data. An empty
// media type defaults to SVGMediaType.
func NewSourceFile(name, mediaType string, data []byte) SourceFile {
	if mediaType == "" {
		mediaType = SVGMediaType
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return SourceFile{Name: name, MediaType: mediaType, data: buf}
}

// LoadFile reads a drawing from disk.
func LoadFile(path string) (SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("read drawing: %w", err)
	}
	return SourceFile{Name: filepath.Base(path), MediaType: mediaTypeFor(path), data: data}, nil
}

func mediaTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".svg" || ext == "" {
		return SVGMediaType
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// Data returns the payload. Callers must not modify the returned slice.
func (f SourceFile) Data() []byte { return f.data }

// Size returns the payload length in bytes.
func (f SourceFile) Size() int { return len(f.data) }

// IsZero reports whether f is the zero SourceFile.
func (f SourceFile) IsZero() bool { return f.Name == "" && f.data == nil }

// Observer is notified after a new file has been selected.
type Observer interface {
	FileSelected(f SourceFile)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(f SourceFile)

// FileSelected calls fn(f).
func (fn ObserverFunc) FileSelected(f SourceFile) { fn(f) }

// Selection holds at most one SourceFile. It can be disabled while a
// computation is outstanding, in which case Select does nothing.
type Selection struct {
	mu        sync.RWMutex
	current   SourceFile
	has       bool
	enabled   bool
	observers map[uint64]Observer
	nextID    uint64
}

// New returns an empty, enabled selection.
func New() *Selection {
	return &Selection{enabled: true, observers: make(map[uint64]Observer)}
}

// Select keeps the first of files as the current selection, replacing any
// previous one, and notifies observers. Extra files are discarded. It returns
// false without side effects when the selection is disabled or files is empty.
func (s *Selection) Select(files ...SourceFile) (SourceFile, bool) {
	if len(files) == 0 {
		return SourceFile{}, false
	}
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return SourceFile{}, false
	}
	s.current = files[0]
	s.has = true
	observers := s.snapshotObservers()
	s.mu.Unlock()

	for _, o := range observers {
		o.FileSelected(files[0])
	}
	return files[0], true
}

// Current returns the selected file, if any.
func (s *Selection) Current() (SourceFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.has
}

// SetEnabled toggles whether Select accepts new files.
func (s *Selection) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

// Enabled reports whether Select currently accepts files.
func (s *Selection) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Subscribe registers o and returns a function that removes it.
func (s *Selection) Subscribe(o Observer) (cancel func()) {
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

func (s *Selection) snapshotObservers() []Observer {
	out := make([]Observer, 0, len(s.observers))
	for id := uint64(0); id < s.nextID; id++ {
		if o, ok := s.observers[id]; ok {
			out = append(out, o)
		}
	}
	return out
}
