package domain

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"
)

// PrimitiveKind identifies the geometry of a VectorElement
type PrimitiveKind int

const (
	PrimitiveLine PrimitiveKind = iota
	PrimitiveCurve
	PrimitiveCircle
	PrimitiveRectangle
)

var primitiveNames = map[PrimitiveKind]string{
	PrimitiveLine:      "line",
	PrimitiveCurve:     "curve",
	PrimitiveCircle:    "circle",
	PrimitiveRectangle: "rectangle",
}

func (k PrimitiveKind) String() string {
	if name, ok := primitiveNames[k]; ok {
		return name
	}
	return fmt.Sprintf("primitive(%d)", int(k))
}

// VectorElement is a geometric primitive handed over by the extraction side.
// Points are interpreted per kind: a line carries start x,y and end x,y.
type VectorElement struct {
	Kind      PrimitiveKind
	Points    []float64
	Thickness float64
}

// NewLine builds a line primitive from (x1,y1) to (x2,y2)
func NewLine(x1, y1, x2, y2, thickness float64) VectorElement {
	return VectorElement{
		Kind:      PrimitiveLine,
		Points:    []float64{x1, y1, x2, y2},
		Thickness: thickness,
	}
}

// Finite reports whether every coordinate is a real number
func (v VectorElement) Finite() bool {
	for _, p := range v.Points {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return false
		}
	}
	return true
}

// Format selects the output variant
type Format int

const (
	FormatDXF Format = iota
	FormatDWG
)

func (f Format) String() string {
	switch f {
	case FormatDXF:
		return "DXF"
	case FormatDWG:
		return "DWG"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Extension returns the file extension for f, including the dot
func (f Format) Extension() string {
	return "." + strings.ToLower(f.String())
}

// ParseFormat accepts "dxf" or "dwg" in any case, with or without a dot
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "dxf":
		return FormatDXF, nil
	case "dwg":
		return FormatDWG, nil
	default:
		return 0, ValidationError(fmt.Sprintf("unsupported output format %q, only .dxf and .dwg are supported", s), nil)
	}
}

// FormatFromPath infers the format from an output file extension
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, ValidationError(fmt.Sprintf("output path %q has no extension", path), nil)
	}
	return ParseFormat(ext)
}

// EventType represents the type of stream event
type EventType string

const (
	EventStart     EventType = "start"
	EventExtracted EventType = "extracted"
	EventSkipped   EventType = "skipped"
	EventError     EventType = "error"
	EventComplete  EventType = "complete"
)

// StreamEvent represents an event emitted during a conversion
type StreamEvent struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ExtractionStats summarizes what a Source produced
type ExtractionStats struct {
	Vectors int `json:"vectors"`
	Texts   int `json:"texts"`
}

// SkipStats lists the vectors a conversion left out of the drawing
type SkipStats struct {
	Unsupported map[PrimitiveKind]int `json:"unsupported,omitempty"`
	Malformed   int                   `json:"malformed"`
}
