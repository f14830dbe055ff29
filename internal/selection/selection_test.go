package selection

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewSourceFile(t *testing.T) {
	t.Parallel()
	data := []byte("<svg/>")
	f := NewSourceFile("plate.svg", "", data)

	if f.MediaType != SVGMediaType {
		t.Errorf("MediaType = %q, want %q", f.MediaType, SVGMediaType)
	}
	data[0] = 'X'
	if string(f.Data()) != "<svg/>" {
		t.Errorf("payload should be copied, got %q", f.Data())
	}
	if f.Size() != 6 {
		t.Errorf("Size() = %d, want 6", f.Size())
	}
	if f.IsZero() {
		t.Error("IsZero() should be false for a named file")
	}
	if !(SourceFile{}).IsZero() {
		t.Error("IsZero() should be true for the zero value")
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := []struct {
		name      string
		file      string
		mediaType string
	}{
		{"svg", "panel.svg", SVGMediaType},
		{"upper-case svg", "PANEL.SVG", SVGMediaType},
		{"no extension", "drawing", SVGMediaType},
		{"png", "photo.png", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte("payload"), 0o600); err != nil {
				t.Fatal(err)
			}
			f, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if f.Name != tt.file {
				t.Errorf("Name = %q, want %q", f.Name, tt.file)
			}
			if f.MediaType != tt.mediaType {
				t.Errorf("MediaType = %q, want %q", f.MediaType, tt.mediaType)
			}
			if string(f.Data()) != "payload" {
				t.Errorf("Data() = %q", f.Data())
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		if _, err := LoadFile(filepath.Join(dir, "missing.svg")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})
}

func TestSelection_SecondFileReplacesFirst(t *testing.T) {
	t.Parallel()
	s := New()
	first := NewSourceFile("a.svg", "", []byte("a"))
	second := NewSourceFile("b.svg", "", []byte("b"))

	s.Select(first)
	s.Select(second)

	cur, ok := s.Current()
	if !ok || cur.Name != "b.svg" {
		t.Errorf("Current() = %q (ok=%v), want b.svg", cur.Name, ok)
	}
}

func TestSelection_KeepsOnlyFirstOfMany(t *testing.T) {
	t.Parallel()
	s := New()
	var notified []string
	s.Subscribe(ObserverFunc(func(f SourceFile) { notified = append(notified, f.Name) }))

	got, ok := s.Select(
		NewSourceFile("a.svg", "", nil),
		NewSourceFile("b.svg", "", nil),
		NewSourceFile("c.svg", "", nil),
	)
	if !ok || got.Name != "a.svg" {
		t.Errorf("Select() = %q (ok=%v), want a.svg", got.Name, ok)
	}
	if len(notified) != 1 || notified[0] != "a.svg" {
		t.Errorf("expected a single notification for a.svg, got %v", notified)
	}
}

func TestSelection_EmptySelectIsNoOp(t *testing.T) {
	t.Parallel()
	s := New()
	if _, ok := s.Select(); ok {
		t.Error("Select() with no files should report false")
	}
	if _, ok := s.Current(); ok {
		t.Error("selection should still be empty")
	}
}

func TestSelection_DisabledRefusesFiles(t *testing.T) {
	t.Parallel()
	s := New()
	calls := 0
	s.Subscribe(ObserverFunc(func(SourceFile) { calls++ }))

	s.Select(NewSourceFile("a.svg", "", nil))
	s.SetEnabled(false)
	if s.Enabled() {
		t.Fatal("Enabled() should be false")
	}
	if _, ok := s.Select(NewSourceFile("b.svg", "", nil)); ok {
		t.Error("Select() should be refused while disabled")
	}

	cur, _ := s.Current()
	if cur.Name != "a.svg" {
		t.Errorf("refused selection replaced the file: %q", cur.Name)
	}
	if calls != 1 {
		t.Errorf("expected 1 notification, got %d", calls)
	}

	s.SetEnabled(true)
	if _, ok := s.Select(NewSourceFile("c.svg", "", nil)); !ok {
		t.Error("Select() should succeed once re-enabled")
	}
}

func TestSelection_Unsubscribe(t *testing.T) {
	t.Parallel()
	s := New()
	calls := 0
	cancel := s.Subscribe(ObserverFunc(func(SourceFile) { calls++ }))
	cancel()
	s.Select(NewSourceFile("a.svg", "", nil))
	if calls != 0 {
		t.Errorf("unsubscribed observer was notified %d times", calls)
	}
}
