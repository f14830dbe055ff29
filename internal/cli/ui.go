package cli

import (
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/lasercalc/internal/ui"
)

const (
	// SpinnerRefreshRate defines the refresh frequency of the loading spinner.
	SpinnerRefreshRate = 200 * time.Millisecond
	// tableLabelWidth is the width of the first column of the breakdown.
	tableLabelWidth = 10
	// tableTimeWidth is the width of the time column of the breakdown.
	tableTimeWidth = 10
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This decouples the one-shot flow from a specific spinner implementation,
// so tests can observe when the loading indicator starts and stops.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements the
// `Spinner` interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Suffix = suffix
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], SpinnerRefreshRate, options...)
	return &realSpinner{s}
}

// colorize wraps text in an escape code and the theme's reset code. With the
// no-color theme both are empty and text is returned as is.
func colorize(code, text string) string {
	if code == "" {
		return text
	}
	return code + text + ui.GetCurrentTheme().Reset
}

// padRight pads plain text to width before any escape codes are added, so
// colored columns stay aligned.
func padRight(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	buf := make([]rune, 0, width)
	buf = append(buf, []rune(text)...)
	for ; n < width; n++ {
		buf = append(buf, ' ')
	}
	return string(buf)
}
