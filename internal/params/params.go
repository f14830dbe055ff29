package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/agbru/lasercalc/internal/errors"
)

// Field names one machine parameter. The string value is the wire key.
type Field string

// Parameter keys, as sent to the estimation service.
const (
	CutSpeed           Field = "cut_speed"
	VectorEngraveSpeed Field = "vector_engrave_speed"
	RasterEngraveSpeed Field = "raster_engrave_speed"
	TransitSpeed       Field = "transit_speed"
	ScanGap            Field = "scan_gap"
	PPI                Field = "ppi"
	Accel              Field = "accel"
	JunctionDelay      Field = "junction_delay"
	BurnDwell          Field = "burn_dwell"
)

// Fields lists every parameter in wire order.
var Fields = []Field{
	CutSpeed,
	VectorEngraveSpeed,
	RasterEngraveSpeed,
	TransitSpeed,
	ScanGap,
	PPI,
	Accel,
	JunctionDelay,
	BurnDwell,
}

// String returns the wire key.
func (f Field) String() string { return string(f) }

// FlagName returns the command-line form of f, e.g. "cut-speed".
func (f Field) FlagName() string { return strings.ReplaceAll(string(f), "_", "-") }

// EnvKey returns the environment form of f without prefix, e.g. "CUT_SPEED".
func (f Field) EnvKey() string { return strings.ToUpper(string(f)) }

// Valid reports whether f is one of the known parameters.
func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// ParseField resolves a parameter name. Both the wire form ("cut_speed") and
// the flag form ("cut-speed") are accepted.
func ParseField(name string) (Field, error) {
	f := Field(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	if !f.Valid() {
		return "", apperrors.ValidationError{Field: name, Message: "unknown machine parameter"}
	}
	return f, nil
}

// MachineParameters is one complete parameter set. Speeds are in mm/s,
// ScanGap in mm, PPI in dots per inch, Accel in mm/s², JunctionDelay and
// BurnDwell in seconds.
type MachineParameters struct {
	CutSpeed           float64 `json:"cut_speed"`
	VectorEngraveSpeed float64 `json:"vector_engrave_speed"`
	RasterEngraveSpeed float64 `json:"raster_engrave_speed"`
	TransitSpeed       float64 `json:"transit_speed"`
	ScanGap            float64 `json:"scan_gap"`
	PPI                float64 `json:"ppi"`
	Accel              float64 `json:"accel"`
	JunctionDelay      float64 `json:"junction_delay"`
	BurnDwell          float64 `json:"burn_dwell"`
}

// Defaults returns the parameter set a new session starts with.
func Defaults() MachineParameters {
	return MachineParameters{
		CutSpeed:           10,
		VectorEngraveSpeed: 50,
		RasterEngraveSpeed: 100,
		TransitSpeed:       200,
		ScanGap:            0.1,
		PPI:                25.4,
		Accel:              500,
		JunctionDelay:      0.05,
		BurnDwell:          0.1,
	}
}

// Coerce turns raw user input into a parameter value. Anything that does not
// parse as a finite, non-negative decimal number becomes 0.
func Coerce(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return clean(v)
}

// ParseStrict parses raw for f and rejects anything Coerce would silently turn
// into 0. It is used for configuration input, where a typo should be reported
// rather than absorbed.
func ParseStrict(f Field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, apperrors.ValidationError{Field: f.FlagName(), Message: fmt.Sprintf("%q is not a number", raw)}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, apperrors.ValidationError{Field: f.FlagName(), Message: "must be a finite, non-negative number"}
	}
	return clean(v), nil
}

func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	// Normalises -0 so snapshots compare byte-identical.
	return v + 0
}

// Get returns the value of f. ok is false for an unknown field.
func (p MachineParameters) Get(f Field) (v float64, ok bool) {
	if ptr := p.ref(f); ptr != nil {
		return *ptr, true
	}
	return 0, false
}

// With returns a copy of p with f set to v. v is sanitised; an unknown field
// returns an unchanged copy.
func (p MachineParameters) With(f Field, v float64) MachineParameters {
	if ptr := p.ref(f); ptr != nil {
		*ptr = clean(v)
	}
	return p
}

// Update returns a copy of p with f set to Coerce(raw). The receiver is not
// modified.
func (p MachineParameters) Update(f Field, raw string) MachineParameters {
	return p.With(f, Coerce(raw))
}

// Sanitize returns a copy with every field forced finite and non-negative.
func (p MachineParameters) Sanitize() MachineParameters {
	for _, f := range Fields {
		v, _ := p.Get(f)
		p = p.With(f, v)
	}
	return p
}

// FormValue returns the decimal string sent on the wire for f.
func (p MachineParameters) FormValue(f Field) string {
	v, _ := p.Get(f)
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormValues returns every parameter as (key, decimal string) in wire order.
func (p MachineParameters) FormValues() [][2]string {
	out := make([][2]string, 0, len(Fields))
	for _, f := range Fields {
		out = append(out, [2]string{string(f), p.FormValue(f)})
	}
	return out
}

// ref returns a pointer into the receiver copy; callers own that copy.
func (p *MachineParameters) ref(f Field) *float64 {
	switch f {
	case CutSpeed:
		return &p.CutSpeed
	case VectorEngraveSpeed:
		return &p.VectorEngraveSpeed
	case RasterEngraveSpeed:
		return &p.RasterEngraveSpeed
	case TransitSpeed:
		return &p.TransitSpeed
	case ScanGap:
		return &p.ScanGap
	case PPI:
		return &p.PPI
	case Accel:
		return &p.Accel
	case JunctionDelay:
		return &p.JunctionDelay
	case BurnDwell:
		return &p.BurnDwell
	}
	return nil
}
