package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/lasercalc/internal/format"
	"github.com/agbru/lasercalc/internal/orchestration"
	"github.com/agbru/lasercalc/internal/report"
)

const (
	labelColumnWidth = 16
	timeColumnWidth  = 9
)

// renderParams draws the parameter list, basic settings first.
func (m Model) renderParams(width, height int) string {
	current := m.store.Current()
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Machine parameters"))
	b.WriteString("\n")

	advancedShown := false
	for i, spec := range m.fields {
		if spec.Advanced && !advancedShown {
			advancedShown = true
			b.WriteString(dimStyle.Render("Advanced"))
			b.WriteString("\n")
		}

		marker := "  "
		label := labelStyle.Render(padRight(spec.Label, labelColumnWidth))
		if i == m.cursor {
			marker = selectedLabelStyle.Render("▸ ")
			label = selectedLabelStyle.Render(padRight(spec.Label, labelColumnWidth))
		}

		value := valueStyle.Render(current.FormValue(spec.Field))
		if i == m.cursor && m.mode == modeEdit {
			value = inputStyle.Render(m.input + "▌")
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", marker, label, value, unitStyle.Render(spec.Unit))
	}
	return panelStyle.Width(max(width-2, 0)).Height(max(height-2, 0)).Render(strings.TrimRight(b.String(), "\n"))
}

// renderResults draws the report or the error of the latest request, never
// both, with a loading line while a request is outstanding.
func (m Model) renderResults(width, height int) string {
	s := m.session
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Estimate"))
	b.WriteString("\n")

	if s.Loading {
		b.WriteString(m.spinner.View() + " " + statusRunningStyle.Render("Estimating..."))
		b.WriteString("\n")
	}

	switch {
	case s.State == orchestration.StateFailed:
		b.WriteString(errorStyle.Render("✗ " + s.ErrorMessage()))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Adjust a parameter, open another drawing or press r to retry."))
	case s.Report != nil:
		b.WriteString(renderReport(*s.Report))
	case s.File == nil:
		b.WriteString(dimStyle.Render("Press o to open an SVG drawing."))
	}
	return panelStyle.Width(max(width-2, 0)).Height(max(height-2, 0)).Render(strings.TrimRight(b.String(), "\n"))
}

// renderReport lays out a report exactly as the service returned it.
func renderReport(r report.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", labelStyle.Render("Total time"), totalStyle.Render(r.FormattedTime))
	fmt.Fprintf(&b, "%s%s%s\n",
		dimStyle.Render(padRight("Operation", labelColumnWidth/2+2)),
		dimStyle.Render(padRight("Time", timeColumnWidth)),
		dimStyle.Render("Distance / Area"))
	for _, row := range r.Rows() {
		style, ok := layerStyles[row.Label]
		if !ok {
			style = labelStyle
		}
		measure := format.FormatMillimetres(row.Distance)
		if row.Label == "Raster" {
			measure = format.FormatArea(row.Area)
		}
		fmt.Fprintf(&b, "%s%s%s\n",
			style.Render(padRight(row.Label, labelColumnWidth/2+2)),
			padRight(format.FormatSeconds(row.Seconds), timeColumnWidth),
			measure)
	}
	fmt.Fprintf(&b, "\n%s %s\n", labelStyle.Render("Burned distance "), valueStyle.Render(format.FormatMillimetres(r.TotalDistanceBurnedMM)))
	fmt.Fprintf(&b, "%s %s", labelStyle.Render("Transit distance"), valueStyle.Render(format.FormatMillimetres(r.TotalDistanceTransitMM)))
	return b.String()
}

// padRight pads s with spaces to a display width of n.
func padRight(s string, n int) string {
	return s + spaces(n-lipgloss.Width(s))
}
