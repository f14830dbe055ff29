package orchestration

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/agbru/lasercalc/internal/errors"
	"github.com/agbru/lasercalc/internal/params"
	"github.com/agbru/lasercalc/internal/report"
	"github.com/agbru/lasercalc/internal/selection"
)

// State is the lifecycle stage of the session.
type State int

const (
	// StateIdle means no drawing has been selected yet.
	StateIdle State = iota
	// StateComputing means a request is outstanding.
	StateComputing
	// StateSuccess means the latest request produced a report.
	StateSuccess
	// StateFailed means the latest request failed.
	StateFailed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComputing:
		return "computing"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether s is Success or Failed.
func (s State) Terminal() bool { return s == StateSuccess || s == StateFailed }

// ComputationRequest is one issued call to the estimator.
type ComputationRequest struct {
	ID       uuid.UUID
	Seq      uint64
	File     selection.SourceFile
	Params   params.MachineParameters
	IssuedAt time.Time
}

// Session is an immutable snapshot of the orchestrator's state.
type Session struct {
	State   State
	Params  params.MachineParameters
	File    *selection.SourceFile
	Report  *report.Report
	Err     error
	Loading bool
	// Seq is the sequence number of the latest issued request.
	Seq uint64
	// RequestID identifies the latest issued request.
	RequestID uuid.UUID
	// IssuedAt is when the latest request was issued.
	IssuedAt time.Time
	// Elapsed is how long the latest request took; zero while it runs.
	Elapsed time.Duration
	// Version increases by one with every published snapshot.
	Version uint64
}

// ErrorMessage returns the text to show for Err, or "" when there is none.
func (s Session) ErrorMessage() string {
	return apperrors.UserMessage(s.Err)
}

type fileView struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Size      int    `json:"size"`
}

type sessionView struct {
	State     string                   `json:"state"`
	Loading   bool                     `json:"loading"`
	Seq       uint64                   `json:"seq"`
	Version   uint64                   `json:"version"`
	RequestID string                   `json:"request_id,omitempty"`
	IssuedAt  time.Time                `json:"issued_at,omitzero"`
	ElapsedS  float64                  `json:"elapsed_seconds,omitempty"`
	Params    params.MachineParameters `json:"params"`
	File      *fileView                `json:"file,omitempty"`
	Report    *report.Report           `json:"report,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// MarshalJSON renders the snapshot without the drawing's payload.
func (s Session) MarshalJSON() ([]byte, error) {
	v := sessionView{
		State:    s.State.String(),
		Loading:  s.Loading,
		Seq:      s.Seq,
		Version:  s.Version,
		IssuedAt: s.IssuedAt,
		ElapsedS: s.Elapsed.Seconds(),
		Params:   s.Params,
		Report:   s.Report,
		Error:    s.ErrorMessage(),
	}
	if s.RequestID != uuid.Nil {
		v.RequestID = s.RequestID.String()
	}
	if s.File != nil {
		v.File = &fileView{Name: s.File.Name, MediaType: s.File.MediaType, Size: s.File.Size()}
	}
	return json.Marshal(v)
}
