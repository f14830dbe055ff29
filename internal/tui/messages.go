package tui

import (
	"github.com/agbru/lasercalc/internal/orchestration"
	"github.com/agbru/lasercalc/internal/selection"
)

// SessionMsg carries the latest orchestrator snapshot into the program.
type SessionMsg struct {
	Session orchestration.Session
}

// fileLoadedMsg is the result of reading a drawing from disk.
type fileLoadedMsg struct {
	Path string
	File selection.SourceFile
	Err  error
}
