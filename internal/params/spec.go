package params

import "math"

// FieldSpec describes how a parameter is presented and nudged in the
// interactive controls. Min and Max bound the slider, not the value: typed
// input outside the range is accepted as long as it is a valid number.
type FieldSpec struct {
	Field Field
	Label string
	Unit  string
	Min   float64
	Max   float64
	Step  float64
	// Advanced marks settings grouped under the secondary section.
	Advanced bool
}

var fieldSpecs = []FieldSpec{
	{Field: CutSpeed, Label: "Cut speed", Unit: "mm/s", Min: 1, Max: 50, Step: 1},
	{Field: VectorEngraveSpeed, Label: "Mark speed", Unit: "mm/s", Min: 10, Max: 200, Step: 1},
	{Field: RasterEngraveSpeed, Label: "Raster speed", Unit: "mm/s", Min: 50, Max: 600, Step: 1},
	{Field: TransitSpeed, Label: "Transit speed", Unit: "mm/s", Min: 50, Max: 600, Step: 1},
	{Field: Accel, Label: "Acceleration", Unit: "mm/s²", Min: 50, Max: 2000, Step: 50, Advanced: true},
	{Field: PPI, Label: "PPI", Unit: "dpi", Min: 10, Max: 300, Step: 0.1, Advanced: true},
	{Field: ScanGap, Label: "Scan gap", Unit: "mm", Min: 0.01, Max: 1, Step: 0.01, Advanced: true},
	{Field: JunctionDelay, Label: "Junction delay", Unit: "s", Min: 0, Max: 1, Step: 0.01, Advanced: true},
	{Field: BurnDwell, Label: "Burn dwell", Unit: "s", Min: 0, Max: 1, Step: 0.01, Advanced: true},
}

// Specs returns the presentation metadata in display order.
func Specs() []FieldSpec {
	out := make([]FieldSpec, len(fieldSpecs))
	copy(out, fieldSpecs)
	return out
}

// SpecFor returns the metadata of f.
func SpecFor(f Field) (FieldSpec, bool) {
	for _, s := range fieldSpecs {
		if s.Field == f {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// Nudge moves v by delta steps and clamps the result to [Min, Max].
func (s FieldSpec) Nudge(v float64, delta int) float64 {
	v += float64(delta) * s.Step
	if v < s.Min {
		v = s.Min
	}
	if v > s.Max {
		v = s.Max
	}
	return roundToStep(v, s.Step)
}

func roundToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	v = math.Round(v/step) * step
	// Trims binary drift such as 0.30000000000000004.
	return math.Round(v*1e6) / 1e6
}
