package cad

import (
	"math"
	"strings"
	"unicode"

	"github.com/spherical/pdf2cad/internal/domain"
	"github.com/spherical/pdf2cad/internal/dxf"
)

// Lineweight values, in hundredths of a millimetre
const (
	lineWeightByLayer = -1
	lineWeightDefault = -3
)

// standardLineWeights are the only positive values readers accept for 370
var standardLineWeights = []int{
	0, 5, 9, 13, 15, 18, 20, 25, 30, 35, 40, 50, 53,
	60, 70, 80, 90, 100, 106, 120, 140, 158, 200, 211,
}

// pointsToMillimetres converts PDF user-space units
const pointsToMillimetres = 25.4 / 72

// translation is the outcome of translating one primitive
type translation int

const (
	translated translation = iota
	unsupported
	malformed
)

// translator writes the entity records for one primitive
type translator func(b *builder, s *dxf.Section, v domain.VectorElement) translation

// translators maps each primitive kind to its encoder. A nil entry, like a
// kind missing from the table, is skipped and counted.
var translators = map[domain.PrimitiveKind]translator{
	domain.PrimitiveLine:      translateLine,
	domain.PrimitiveCurve:     nil,
	domain.PrimitiveCircle:    nil,
	domain.PrimitiveRectangle: nil,
}

// Supported reports whether a primitive kind has a translation
func Supported(kind domain.PrimitiveKind) bool {
	return translators[kind] != nil
}

func unsupportedKind(*builder, *dxf.Section, domain.VectorElement) translation {
	return unsupported
}

func (b *builder) entities(vectors []domain.VectorElement, texts []string) {
	s := b.doc.NewSection(dxf.SectionEntities)

	b.log.Info("Writing %d vector elements...", len(vectors))
	for i, v := range vectors {
		translate := translators[v.Kind]
		if translate == nil {
			translate = unsupportedKind
		}
		switch translate(b, s, v) {
		case translated:
			b.report.Lines++
		case unsupported:
			b.report.Skipped++
			b.report.SkippedByKind[v.Kind]++
			b.log.Warn("  Skipped vector %d: %v", i, domain.UnsupportedPrimitiveError(v.Kind))
		case malformed:
			b.report.Skipped++
			b.report.Malformed++
			b.log.Warn("  Skipped vector %d: malformed %s with %d points", i, v.Kind, len(v.Points))
		}
	}

	b.log.Info("Writing %d text elements...", len(texts))
	for i, text := range texts {
		b.text(s, i, text)
	}

	if b.report.Skipped > 0 {
		b.log.Warn("Skipped %d of %d vector elements", b.report.Skipped, len(vectors))
	}
}

// entity writes the prefix shared by every entity in model space
func (b *builder) entity(s *dxf.Section, kind, layer string) {
	s.Str(dxf.CodeEntityType, kind)
	s.Handle(dxf.CodeHandle, b.alloc.Next())
	s.Handle(dxf.CodeOwner, b.modelSpace)
	s.Str(dxf.CodeSubclass, "AcDbEntity")
	s.Str(8, layer)
}

func translateLine(b *builder, s *dxf.Section, v domain.VectorElement) translation {
	if len(v.Points) < 4 || !v.Finite() {
		return malformed
	}
	x1, y1, x2, y2 := v.Points[0], v.Points[1], v.Points[2], v.Points[3]

	b.entity(s, "LINE", b.opts.GeometryLayer)
	// only a positive finite thickness overrides the layer lineweight
	if b.opts.PropagateLineWeight && v.Thickness > 0 && !math.IsInf(v.Thickness, 1) {
		s.Int(370, lineWeight(v.Thickness))
	}
	s.Str(dxf.CodeSubclass, "AcDbLine")
	s.Point(10, x1, y1, 0)
	s.Point(11, x2, y2, 0)

	b.log.Debug("  Added line from (%.2f,%.2f) to (%.2f,%.2f)", x1, y1, x2, y2)
	return translated
}

// text writes the i-th text entity one line pitch above the previous one
func (b *builder) text(s *dxf.Section, i int, text string) {
	x := b.opts.TextOriginX
	y := b.opts.TextOriginY + float64(i)*b.opts.LinePitch
	value := singleLine(text)

	b.entity(s, "TEXT", b.opts.TextLayer)
	s.Str(dxf.CodeSubclass, "AcDbText")
	s.Point(10, x, y, 0)
	s.Float(40, b.opts.TextHeight)
	s.Str(1, value)
	s.Str(7, "Standard")
	s.Str(dxf.CodeSubclass, "AcDbText")
	b.report.Texts++

	b.log.Debug("  Added text: %s", truncate(value, 50))
}

// lineWeight converts a stroke thickness in points to the nearest standard
// lineweight.
func lineWeight(thickness float64) int {
	want := thickness * pointsToMillimetres * 100
	best := standardLineWeights[0]
	for _, w := range standardLineWeights {
		if math.Abs(float64(w)-want) < math.Abs(float64(best)-want) {
			best = w
		}
	}
	return best
}

// singleLine replaces control characters, which would break the line
// grammar, with spaces.
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
