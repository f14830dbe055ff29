package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	apperrors "github.com/agbru/lasercalc/internal/errors"
)

// Timed is a vector layer: cut or mark.
type Timed struct {
	Time     float64 `json:"time"`
	Distance float64 `json:"distance"`
}

// Raster is the raster layer, which reports an area instead of a distance.
type Raster struct {
	Time float64 `json:"time"`
	Area float64 `json:"area"`
}

// Layers is the per-operation breakdown.
type Layers struct {
	Cut    Timed  `json:"cut"`
	Mark   Timed  `json:"mark"`
	Raster Raster `json:"raster"`
}

// Report is the normalized result of a successful computation.
type Report struct {
	FormattedTime          string  `json:"formatted_time"`
	TransitTimeSeconds     float64 `json:"transit_time_seconds"`
	TotalDistanceBurnedMM  float64 `json:"total_distance_burned_mm"`
	TotalDistanceTransitMM float64 `json:"total_distance_transit_mm"`
	Layers                 Layers  `json:"layer_breakdown"`
	// EstimatedTotalSeconds is sent by current service versions but is not
	// part of the required schema.
	EstimatedTotalSeconds *float64 `json:"estimated_total_time_seconds,omitempty"`
}

// Validate checks that every numeric field is finite.
func (r Report) Validate() error {
	for _, f := range r.numericFields() {
		if err := checkFinite(f.path, f.value); err != nil {
			return err
		}
	}
	if r.EstimatedTotalSeconds != nil {
		if err := checkFinite("estimated_total_time_seconds", *r.EstimatedTotalSeconds); err != nil {
			return err
		}
	}
	return nil
}

type namedValue struct {
	path  string
	value float64
}

func (r Report) numericFields() []namedValue {
	return []namedValue{
		{"transit_time_seconds", r.TransitTimeSeconds},
		{"total_distance_burned_mm", r.TotalDistanceBurnedMM},
		{"total_distance_transit_mm", r.TotalDistanceTransitMM},
		{"layer_breakdown.cut.time", r.Layers.Cut.Time},
		{"layer_breakdown.cut.distance", r.Layers.Cut.Distance},
		{"layer_breakdown.mark.time", r.Layers.Mark.Time},
		{"layer_breakdown.mark.distance", r.Layers.Mark.Distance},
		{"layer_breakdown.raster.time", r.Layers.Raster.Time},
		{"layer_breakdown.raster.area", r.Layers.Raster.Area},
	}
}

func checkFinite(path string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &apperrors.DecodeError{Field: path, Reason: "not a finite number"}
	}
	return nil
}

// FromResponse decodes and validates a success response body.
func FromResponse(body []byte) (Report, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Report{}, &apperrors.DecodeError{Reason: "empty body"}
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &root); err != nil || root == nil {
		return Report{}, &apperrors.DecodeError{Reason: "body is not a JSON object", Cause: err}
	}

	d := decoder{}
	var r Report
	r.FormattedTime = d.text(root, "formatted_time")
	r.TransitTimeSeconds = d.number(root, "", "transit_time_seconds")
	r.TotalDistanceBurnedMM = d.number(root, "", "total_distance_burned_mm")
	r.TotalDistanceTransitMM = d.number(root, "", "total_distance_transit_mm")

	layers := d.object(root, "", "layer_breakdown")
	cut := d.object(layers, "layer_breakdown", "cut")
	r.Layers.Cut.Time = d.number(cut, "layer_breakdown.cut", "time")
	r.Layers.Cut.Distance = d.number(cut, "layer_breakdown.cut", "distance")
	mark := d.object(layers, "layer_breakdown", "mark")
	r.Layers.Mark.Time = d.number(mark, "layer_breakdown.mark", "time")
	r.Layers.Mark.Distance = d.number(mark, "layer_breakdown.mark", "distance")
	raster := d.object(layers, "layer_breakdown", "raster")
	r.Layers.Raster.Time = d.number(raster, "layer_breakdown.raster", "time")
	r.Layers.Raster.Area = d.number(raster, "layer_breakdown.raster", "area")

	if raw, ok := root["estimated_total_time_seconds"]; ok && !isNull(raw) {
		v := d.parse("estimated_total_time_seconds", raw)
		r.EstimatedTotalSeconds = &v
	}

	if d.err != nil {
		return Report{}, d.err
	}
	if err := r.Validate(); err != nil {
		return Report{}, err
	}
	return r, nil
}

// decoder walks the response, keeping the first error and turning every later
// lookup into a no-op.
type decoder struct {
	err error
}

func (d *decoder) fail(path, reason string, cause error) {
	if d.err == nil {
		d.err = &apperrors.DecodeError{Field: path, Reason: reason, Cause: cause}
	}
}

func join(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func (d *decoder) lookup(obj map[string]json.RawMessage, path string, key string) (json.RawMessage, bool) {
	if d.err != nil {
		return nil, false
	}
	raw, ok := obj[key]
	if !ok {
		d.fail(path, "missing", nil)
		return nil, false
	}
	if isNull(raw) {
		d.fail(path, "null", nil)
		return nil, false
	}
	return raw, true
}

func (d *decoder) object(obj map[string]json.RawMessage, parent, key string) map[string]json.RawMessage {
	path := join(parent, key)
	raw, ok := d.lookup(obj, path, key)
	if !ok {
		return nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		d.fail(path, "not an object", err)
		return nil
	}
	return out
}

func (d *decoder) text(obj map[string]json.RawMessage, key string) string {
	raw, ok := d.lookup(obj, key, key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		d.fail(key, "not a string", err)
		return ""
	}
	return s
}

func (d *decoder) number(obj map[string]json.RawMessage, parent, key string) float64 {
	path := join(parent, key)
	raw, ok := d.lookup(obj, path, key)
	if !ok {
		return 0
	}
	return d.parse(path, raw)
}

// parse accepts a JSON number or a string holding one.
func (d *decoder) parse(path string, raw json.RawMessage) float64 {
	if d.err != nil {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		d.fail(path, "not a number", err)
		return 0
	}
	v, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		d.fail(path, "not a number", err)
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		d.fail(path, "not a finite number", nil)
		return 0
	}
	return v
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Row is one line of the results breakdown.
type Row struct {
	Label string
	// Seconds is the time spent on this operation.
	Seconds float64
	// Distance is in millimetres; zero for raster.
	Distance float64
	// Area is in square millimetres; non-zero only for raster.
	Area float64
}

// Rows returns the breakdown in display order: cut, mark, raster, transit.
func (r Report) Rows() []Row {
	return []Row{
		{Label: "Cut", Seconds: r.Layers.Cut.Time, Distance: r.Layers.Cut.Distance},
		{Label: "Mark", Seconds: r.Layers.Mark.Time, Distance: r.Layers.Mark.Distance},
		{Label: "Raster", Seconds: r.Layers.Raster.Time, Area: r.Layers.Raster.Area},
		{Label: "Transit", Seconds: r.TransitTimeSeconds, Distance: r.TotalDistanceTransitMM},
	}
}

// String returns a one-line summary, used in logs.
func (r Report) String() string {
	return fmt.Sprintf("total=%s burned=%.1fmm transit=%.1fmm", r.FormattedTime, r.TotalDistanceBurnedMM, r.TotalDistanceTransitMM)
}
