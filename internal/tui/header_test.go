package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/agbru/lasercalc/internal/orchestration"
	"github.com/agbru/lasercalc/internal/selection"
)

func TestHeaderModel_View(t *testing.T) {
	file := selection.NewSourceFile("sign.svg", "", nil)
	h := NewHeaderModel("v2.0.0")
	h.SetWidth(100)
	h.SetSession(orchestration.Session{State: orchestration.StateSuccess, File: &file})

	view := h.View()
	for _, want := range []string{"Laser Job Estimator v2.0.0", "READY", "sign.svg"} {
		if !strings.Contains(view, want) {
			t.Errorf("header missing %q: %s", want, view)
		}
	}
	if strings.Contains(view, "Request:") {
		t.Error("no timer should be shown before the first request")
	}
}

func TestHeaderModel_DevVersionHidden(t *testing.T) {
	h := NewHeaderModel("dev")
	h.SetWidth(80)
	if strings.Contains(h.View(), "dev") {
		t.Error("the dev version should not be displayed")
	}
}

func TestHeaderModel_Timer(t *testing.T) {
	h := NewHeaderModel("")
	h.SetDone()
	if !h.endTime.IsZero() {
		t.Error("SetDone without Start should be a no-op")
	}

	h.Start()
	time.Sleep(2 * time.Millisecond)
	h.SetDone()
	end := h.endTime
	if end.IsZero() {
		t.Fatal("SetDone should freeze the timer")
	}
	h.SetDone()
	if !h.endTime.Equal(end) {
		t.Error("a second SetDone should keep the first end time")
	}
	if !strings.Contains(h.View(), "Request:") {
		t.Error("header should show the request duration")
	}

	h.Start()
	if !h.endTime.IsZero() {
		t.Error("Start should clear the end time")
	}
}

func TestStateBadge(t *testing.T) {
	tests := map[orchestration.State]string{
		orchestration.StateIdle:      "IDLE",
		orchestration.StateComputing: "COMPUTING",
		orchestration.StateSuccess:   "READY",
		orchestration.StateFailed:    "FAILED",
	}
	for state, want := range tests {
		if got := stateBadge(state); !strings.Contains(got, want) {
			t.Errorf("stateBadge(%v) = %q, want %q", state, got, want)
		}
	}
}
