package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color scheme for CLI output.
// Each field contains an ANSI escape code for the corresponding color category.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Primary is the main accent color, used for the total time.
	Primary string
	// Secondary is used for units and less prominent elements.
	Secondary string
	// Success indicates a completed estimation.
	Success string
	// Warning is used for caution messages.
	Warning string
	// Error indicates a failed estimation.
	Error string
	// Cut, Mark, Raster and Transit color the layer rows of a report.
	Cut     string
	Mark    string
	Raster  string
	Transit string
	// Bold is the escape code for bold text.
	Bold string
	// Reset clears all formatting.
	Reset string
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;75m",  // Sky blue
		Secondary: "\033[38;5;245m", // Grey
		Success:   "\033[38;5;82m",  // Bright green
		Warning:   "\033[38;5;220m", // Yellow
		Error:     "\033[38;5;196m", // Red
		Cut:       "\033[38;5;203m", // Red
		Mark:      "\033[38;5;78m",  // Green
		Raster:    "\033[38;5;69m",  // Blue
		Transit:   "\033[38;5;141m", // Purple
		Bold:      "\033[1m",
		Reset:     "\033[0m",
	}

	// LightTheme is optimized for light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;25m",  // Dark blue
		Secondary: "\033[38;5;240m", // Dark grey
		Success:   "\033[38;5;28m",  // Dark green
		Warning:   "\033[38;5;130m", // Orange
		Error:     "\033[38;5;124m", // Dark red
		Cut:       "\033[38;5;160m",
		Mark:      "\033[38;5;28m",
		Raster:    "\033[38;5;26m",
		Transit:   "\033[38;5;91m",
		Bold:      "\033[1m",
		Reset:     "\033[0m",
	}

	// NoColorTheme disables all color output.
	// Used when NO_COLOR is set or --no-color flag is provided.
	NoColorTheme = Theme{Name: "none"}

	// currentTheme is the active theme used throughout the application.
	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// LayerColor returns the escape code for a report row label
// ("Cut", "Mark", "Raster" or "Transit"), or "" for anything else.
func (t Theme) LayerColor(label string) string {
	switch label {
	case "Cut":
		return t.Cut
	case "Mark":
		return t.Mark
	case "Raster":
		return t.Raster
	case "Transit":
		return t.Transit
	}
	return ""
}

// TUITheme defines lipgloss-compatible colors for the TUI dashboard.
type TUITheme struct {
	Bg      lipgloss.TerminalColor
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Cut     lipgloss.TerminalColor
	Mark    lipgloss.TerminalColor
	Raster  lipgloss.TerminalColor
	Transit lipgloss.TerminalColor
}

var (
	// DarkTUITheme is the slate-and-blue dashboard palette.
	DarkTUITheme = TUITheme{
		Bg:      lipgloss.Color("#111827"),
		Text:    lipgloss.Color("#E5E7EB"),
		Border:  lipgloss.Color("#374151"),
		Accent:  lipgloss.Color("#60A5FA"),
		Success: lipgloss.Color("#22C55E"),
		Warning: lipgloss.Color("#FBBF24"),
		Error:   lipgloss.Color("#F87171"),
		Dim:     lipgloss.Color("#6B7280"),
		Cut:     lipgloss.Color("#EF4444"),
		Mark:    lipgloss.Color("#22C55E"),
		Raster:  lipgloss.Color("#3B82F6"),
		Transit: lipgloss.Color("#A855F7"),
	}

	// NoColorTUITheme disables all TUI colors.
	// lipgloss.NoColor{} renders text with the terminal's default colors.
	NoColorTUITheme = TUITheme{
		Bg:      lipgloss.NoColor{},
		Text:    lipgloss.NoColor{},
		Border:  lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
		Cut:     lipgloss.NoColor{},
		Mark:    lipgloss.NoColor{},
		Raster:  lipgloss.NoColor{},
		Transit: lipgloss.NoColor{},
	}
)

// LayerColor returns the lipgloss color for a report row label.
func (t TUITheme) LayerColor(label string) lipgloss.TerminalColor {
	switch label {
	case "Cut":
		return t.Cut
	case "Mark":
		return t.Mark
	case "Raster":
		return t.Raster
	case "Transit":
		return t.Transit
	}
	return t.Text
}

// GetCurrentTUITheme returns the TUI theme matching the currently active theme.
// When NoColorTheme is active, returns NoColorTUITheme; otherwise DarkTUITheme.
func GetCurrentTUITheme() TUITheme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()

	if currentTheme.Name == "none" {
		return NoColorTUITheme
	}
	return DarkTUITheme
}

// GetCurrentTheme returns the currently active theme in a thread-safe manner.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme sets the currently active theme in a thread-safe manner.
// This is primarily used for testing purposes to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme changes the active theme by name.
// Valid names are: "dark", "light", "none". Unknown names default to dark.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case "light":
		currentTheme = LightTheme
	case "none":
		currentTheme = NoColorTheme
	default:
		currentTheme = DarkTheme
	}
}

// InitTheme initializes the theme based on the noColor flag and environment.
// It respects the NO_COLOR environment variable (https://no-color.org/).
func InitTheme(noColor bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if noColor {
		currentTheme = NoColorTheme
		return
	}
	// Any value, even empty, disables colors.
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = DarkTheme
}
