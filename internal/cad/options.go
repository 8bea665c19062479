package cad

import (
	"fmt"
	"math"
	"strings"

	"github.com/spherical/pdf2cad/internal/domain"
)

// Layout constants for stacked text and the default sheet
const (
	DefaultLinePitch   = 10.0
	DefaultTextHeight  = 2.5
	DefaultDrawingName = "pdf2cad"
	DefaultLayer       = "0"
)

// unitCodes maps unit names to $INSUNITS values
var unitCodes = map[string]int{
	"unitless": 0,
	"in":       1,
	"ft":       2,
	"mm":       4,
	"cm":       5,
	"m":        6,
}

// Options controls the declarative content of generated drawings
type Options struct {
	// DrawingName seeds the deterministic fingerprint GUID
	DrawingName string

	// Units is one of unitless, in, ft, mm, cm, m
	Units string

	LimitsMinX, LimitsMinY float64
	LimitsMaxX, LimitsMaxY float64

	TextOriginX float64
	TextOriginY float64
	LinePitch   float64
	TextHeight  float64

	GeometryLayer string
	TextLayer     string

	// PropagateLineWeight maps primitive thickness onto group 370
	PropagateLineWeight bool
}

// DefaultOptions returns an A3 metric sheet with text stacked from the origin
func DefaultOptions() Options {
	return Options{
		DrawingName:         DefaultDrawingName,
		Units:               "mm",
		LimitsMaxX:          420,
		LimitsMaxY:          297,
		LinePitch:           DefaultLinePitch,
		TextHeight:          DefaultTextHeight,
		GeometryLayer:       DefaultLayer,
		TextLayer:           DefaultLayer,
		PropagateLineWeight: true,
	}
}

// Validate checks the options for values a reader would reject
func (o Options) Validate() error {
	if _, ok := unitCodes[strings.ToLower(o.Units)]; !ok {
		return domain.ValidationError(fmt.Sprintf("unknown units %q", o.Units), nil)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"limits min x", o.LimitsMinX},
		{"limits min y", o.LimitsMinY},
		{"limits max x", o.LimitsMaxX},
		{"limits max y", o.LimitsMaxY},
		{"text origin x", o.TextOriginX},
		{"text origin y", o.TextOriginY},
		{"line pitch", o.LinePitch},
		{"text height", o.TextHeight},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return domain.ValidationError(fmt.Sprintf("%s must be finite, got %v", f.name, f.value), nil)
		}
	}
	if o.LinePitch <= 0 {
		return domain.ValidationError(fmt.Sprintf("line pitch must be positive, got %v", o.LinePitch), nil)
	}
	if o.TextHeight <= 0 {
		return domain.ValidationError(fmt.Sprintf("text height must be positive, got %v", o.TextHeight), nil)
	}
	if o.LimitsMaxX <= o.LimitsMinX || o.LimitsMaxY <= o.LimitsMinY {
		return domain.ValidationError("drawing limits are empty", nil)
	}
	for _, layer := range []string{o.GeometryLayer, o.TextLayer} {
		if strings.TrimSpace(layer) == "" {
			return domain.ValidationError("layer names must not be empty", nil)
		}
		if strings.ContainsAny(layer, `<>/\":;?*|=,`+"`\n\r") {
			return domain.ValidationError(fmt.Sprintf("layer name %q contains reserved characters", layer), nil)
		}
	}
	return nil
}

// insUnits returns the $INSUNITS and $MEASUREMENT values for o.Units
func (o Options) insUnits() (insunits, measurement int) {
	code := unitCodes[strings.ToLower(o.Units)]
	switch code {
	case 1, 2:
		return code, 0
	default:
		return code, 1
	}
}

// layers returns the layer table entries: "0" first, then the configured
// geometry and text layers without duplicates.
func (o Options) layers() []string {
	out := []string{DefaultLayer}
	for _, name := range []string{o.GeometryLayer, o.TextLayer} {
		dup := false
		for _, existing := range out {
			if strings.EqualFold(existing, name) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, name)
		}
	}
	return out
}
