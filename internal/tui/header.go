package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/lasercalc/internal/format"
	"github.com/agbru/lasercalc/internal/orchestration"
)

// HeaderModel renders the top bar: title, version, drawing, state and the
// duration of the latest request.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	file      string
	state     orchestration.State
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{version: version}
}

// Start restarts the elapsed timer for a new request.
func (h *HeaderModel) Start() {
	h.startTime = time.Now()
	h.endTime = time.Time{}
}

// SetDone freezes the elapsed timer at the current time. It has no effect if
// the timer is not running.
func (h *HeaderModel) SetDone() {
	if h.startTime.IsZero() || !h.endTime.IsZero() {
		return
	}
	h.endTime = time.Now()
}

// SetSession updates the drawing name and the state badge.
func (h *HeaderModel) SetSession(s orchestration.Session) {
	h.state = s.State
	if s.File != nil {
		h.file = s.File.Name
	}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "Laser Job Estimator"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := versionStyle.Render(" | ")
	row := titleStyle.Render(titleText) + pipe + stateBadge(h.state)

	if h.file != "" {
		row += pipe + fileStyle.Render(h.file)
	}
	if !h.startTime.IsZero() {
		var duration time.Duration
		if !h.endTime.IsZero() {
			duration = h.endTime.Sub(h.startTime)
		} else {
			duration = time.Since(h.startTime)
		}
		row += pipe + elapsedStyle.Render(fmt.Sprintf("Request: %s", format.FormatExecutionDuration(duration)))
	}

	innerWidth := h.width - 2
	if gap := innerWidth - lipgloss.Width(row); gap > 0 {
		row += spaces(gap)
	}
	return headerStyle.Width(h.width).Render(row)
}

func stateBadge(s orchestration.State) string {
	switch s {
	case orchestration.StateComputing:
		return statusRunningStyle.Render("COMPUTING")
	case orchestration.StateSuccess:
		return statusDoneStyle.Render("READY")
	case orchestration.StateFailed:
		return statusErrorStyle.Render("FAILED")
	}
	return statusIdleStyle.Render("IDLE")
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
