package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/lasercalc/internal/orchestration"
	"github.com/agbru/lasercalc/internal/params"
	"github.com/agbru/lasercalc/internal/selection"
)

// ParameterEditor is the part of the parameter store the dashboard edits.
type ParameterEditor interface {
	Current() params.MachineParameters
	Update(f params.Field, raw string) params.MachineParameters
}

// DrawingSelector accepts the drawing the operator opens.
type DrawingSelector interface {
	Select(files ...selection.SourceFile) (selection.SourceFile, bool)
}

// Recomputer re-issues the latest request.
type Recomputer interface {
	Recompute()
}

// inputMode says what typed characters go to.
type inputMode int

const (
	modeBrowse inputMode = iota
	modeEdit
	modeOpen
)

// Layout constants for the TUI dashboard.
const (
	headerHeight            = 1
	footerHeight            = 2
	minBodyHeight           = 12
	ParamsPanelWidthPercent = 45
)

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

// bodyHeight returns the available height for the main body panels.
func (l LayoutManager) bodyHeight() int {
	h := l.height - headerHeight - footerHeight
	if h < minBodyHeight {
		h = minBodyHeight
	}
	return h
}

// paramsWidth returns the width allocated to the parameters panel.
func (l LayoutManager) paramsWidth() int {
	return l.width * ParamsPanelWidthPercent / 100
}

// resultsWidth returns the width allocated to the results panel.
func (l LayoutManager) resultsWidth() int {
	return l.width - l.paramsWidth()
}

// Model is the root bubbletea model for the TUI dashboard.
type Model struct {
	header  HeaderModel
	keymap  KeyMap
	help    help.Model
	spinner spinner.Model

	store  ParameterEditor
	files  DrawingSelector
	retry  Recomputer
	fields []params.FieldSpec

	session orchestration.Session
	cursor  int
	mode    inputMode
	input   string
	notice  string

	LayoutManager
}

// NewModel creates a new TUI model showing initial until the first
// SessionMsg arrives.
func NewModel(store ParameterEditor, files DrawingSelector, retry Recomputer, initial orchestration.Session, version string) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = statusRunningStyle

	m := Model{
		header:  NewHeaderModel(version),
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		store:   store,
		files:   files,
		retry:   retry,
		fields:  params.Specs(),
		session: initial,
	}
	m.header.SetSession(initial)
	if initial.Loading {
		m.header.Start()
	}
	return m
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(m.width)
		m.help.Width = m.width
		return m, nil

	case SessionMsg:
		m.applySession(msg.Session)
		return m, nil

	case fileLoadedMsg:
		m.notice = ""
		if msg.Err != nil {
			m.notice = "Cannot open " + msg.Path + ": " + rootCause(msg.Err).Error()
			return m, nil
		}
		if _, ok := m.files.Select(msg.File); !ok {
			m.notice = "Wait for the current estimate before opening another drawing"
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// applySession installs a snapshot and keeps the request timer in step.
func (m *Model) applySession(s orchestration.Session) {
	if s.Version != 0 && s.Version < m.session.Version {
		return
	}
	newRequest := s.Seq != m.session.Seq
	m.session = s
	m.header.SetSession(s)
	if newRequest {
		m.header.Start()
	}
	if s.State.Terminal() {
		m.header.SetDone()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.mode {
	case modeEdit, modeOpen:
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keymap.Decrease):
		m.nudge(-1)
		return m, nil

	case key.Matches(msg, m.keymap.Increase):
		m.nudge(1)
		return m, nil

	case key.Matches(msg, m.keymap.Edit):
		m.mode = modeEdit
		m.input = m.store.Current().FormValue(m.fields[m.cursor].Field)
		m.notice = ""
		return m, nil

	case key.Matches(msg, m.keymap.Open):
		m.mode = modeOpen
		m.input = ""
		m.notice = ""
		return m, nil

	case key.Matches(msg, m.keymap.Recompute):
		m.retry.Recompute()
		return m, nil
	}

	return m, nil
}

// handleInputKey edits the typed value or path.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input = ""
		return m, nil

	case tea.KeyEnter:
		mode, input := m.mode, m.input
		m.mode = modeBrowse
		m.input = ""
		if mode == modeEdit {
			m.store.Update(m.fields[m.cursor].Field, input)
			return m, nil
		}
		path := strings.Trim(strings.TrimSpace(input), `'"`)
		if path == "" {
			return m, nil
		}
		return m, loadFileCmd(path)

	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		return m, nil

	case tea.KeySpace:
		m.input += " "
		return m, nil

	case tea.KeyRunes:
		m.input += string(msg.Runes)
		return m, nil
	}
	return m, nil
}

// nudge moves the selected parameter by delta steps within its slider range.
func (m Model) nudge(delta int) {
	spec := m.fields[m.cursor]
	v, _ := m.store.Current().Get(spec.Field)
	m.store.Update(spec.Field, strconv.FormatFloat(spec.Nudge(v, delta), 'f', -1, 64))
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderParams(m.paramsWidth(), m.bodyHeight()),
		m.renderResults(m.resultsWidth(), m.bodyHeight()),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.renderFooter())
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.mode == modeOpen:
		status = labelStyle.Render("Open drawing: ") + inputStyle.Render(m.input+"▌")
	case m.notice != "":
		status = noticeStyle.Render(m.notice)
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, m.help.View(m.keymap))
}

// Run is the public entry point for the TUI mode. It renders snapshots of
// orch until the operator quits or ctx is cancelled.
func Run(ctx context.Context, store *params.Store, files *selection.Selection, orch *orchestration.Orchestrator, version string) error {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	ref := &programRef{}
	bridge, initial, unsubscribe := attachBridge(orch, ref)
	defer func() {
		unsubscribe()
		bridge.Close()
	}()

	model := NewModel(store, files, orch, initial, version)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	// Inject the program reference before the bridge starts sending.
	ref.SetProgram(p)
	bridge.start()

	_, err := p.Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return ctx.Err()
	}
	return err
}

// loadFileCmd reads a drawing off the update loop.
func loadFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := selection.LoadFile(path)
		return fileLoadedMsg{Path: path, File: f, Err: err}
	}
}

// rootCause strips wrapping so notices stay short.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
