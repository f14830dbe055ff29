package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/lasercalc/internal/ui"
)

// Style variables for the TUI dashboard.
// Initialized from the ui theme system via initTUIStyles().
var (
	panelStyle         lipgloss.Style
	panelTitleStyle    lipgloss.Style
	headerStyle        lipgloss.Style
	titleStyle         lipgloss.Style
	versionStyle       lipgloss.Style
	elapsedStyle       lipgloss.Style
	fileStyle          lipgloss.Style
	labelStyle         lipgloss.Style
	selectedLabelStyle lipgloss.Style
	valueStyle         lipgloss.Style
	unitStyle          lipgloss.Style
	inputStyle         lipgloss.Style
	totalStyle         lipgloss.Style
	dimStyle           lipgloss.Style
	errorStyle         lipgloss.Style
	noticeStyle        lipgloss.Style
	statusIdleStyle    lipgloss.Style
	statusRunningStyle lipgloss.Style
	statusDoneStyle    lipgloss.Style
	statusErrorStyle   lipgloss.Style
	layerStyles        map[string]lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all TUI styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Background(t.Bg).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	versionStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	elapsedStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	fileStyle = lipgloss.NewStyle().
		Foreground(t.Text)

	labelStyle = lipgloss.NewStyle().
		Foreground(t.Text)

	selectedLabelStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	valueStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		Bold(true)

	unitStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	inputStyle = lipgloss.NewStyle().
		Foreground(t.Warning).
		Bold(true)

	totalStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	dimStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	errorStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)

	noticeStyle = lipgloss.NewStyle().
		Foreground(t.Warning)

	statusIdleStyle = lipgloss.NewStyle().
		Foreground(t.Dim).
		Bold(true)

	statusRunningStyle = lipgloss.NewStyle().
		Foreground(t.Warning).
		Bold(true)

	statusDoneStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	statusErrorStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)

	layerStyles = make(map[string]lipgloss.Style, 4)
	for _, label := range []string{"Cut", "Mark", "Raster", "Transit"} {
		layerStyles[label] = lipgloss.NewStyle().Foreground(t.LayerColor(label)).Bold(true)
	}
}
