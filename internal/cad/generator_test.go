package cad

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/spherical/pdf2cad/internal/domain"
	"github.com/spherical/pdf2cad/internal/dxf"
)

// parsePairs splits encoded output back into group code / value pairs
func parsePairs(t *testing.T, data []byte) []dxf.Pair {
	t.Helper()
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Equal(t, 0, len(lines)%2, "output must hold whole pairs")

	pairs := make([]dxf.Pair, 0, len(lines)/2)
	for i := 0; i < len(lines); i += 2 {
		code, err := strconv.Atoi(lines[i])
		require.NoError(t, err, "line %d is not a group code: %q", i+1, lines[i])
		pairs = append(pairs, dxf.Pair{Code: code, Value: lines[i+1]})
	}
	return pairs
}

// sectionNames returns the name of each SECTION in order
func sectionNames(pairs []dxf.Pair) []string {
	var names []string
	for i := 0; i+1 < len(pairs); i++ {
		if pairs[i].Code == 0 && pairs[i].Value == "SECTION" {
			names = append(names, pairs[i+1].Value)
		}
	}
	return names
}

// entitiesOf returns the pairs of each record of the given type in a section
func entitiesOf(doc *dxf.Document, section, kind string) [][]dxf.Pair {
	var out [][]dxf.Pair
	var cur []dxf.Pair
	for _, p := range doc.Section(section).Pairs {
		if p.Code == dxf.CodeEntityType {
			if cur != nil {
				out = append(out, cur)
				cur = nil
			}
			if p.Value == kind {
				cur = []dxf.Pair{}
			}
			continue
		}
		if cur != nil {
			cur = append(cur, p)
		}
	}
	if cur != nil {
		out = append(out, cur)
	}
	return out
}

// values returns every value carried by code in pairs
func values(pairs []dxf.Pair, code int) []string {
	var out []string
	for _, p := range pairs {
		if p.Code == code {
			out = append(out, p.Value)
		}
	}
	return out
}

func headerValue(t *testing.T, doc *dxf.Document, variable string) string {
	t.Helper()
	pairs := doc.Section(dxf.SectionHeader).Pairs
	for i, p := range pairs {
		if p.Code == dxf.CodeVariable && p.Value == variable {
			require.Less(t, i+1, len(pairs))
			return pairs[i+1].Value
		}
	}
	t.Fatalf("header variable %s not found", variable)
	return ""
}

func newTestGenerator(t *testing.T, opts Options) *Generator {
	t.Helper()
	g, err := NewGenerator(opts, nil)
	require.NoError(t, err)
	return g
}

func encode(t *testing.T, g *Generator, vectors []domain.VectorElement, texts []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := g.WriteTo(&buf, vectors, texts, domain.FormatDXF)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestGenerate_EmptyInput(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())
	out := filepath.Join(t.TempDir(), "empty.dxf")

	report, err := g.Generate(nil, nil, out, domain.FormatDXF)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Entities())
	assert.True(t, report.Complete())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), report.Bytes)

	pairs := parsePairs(t, data)
	assert.Equal(t, dxf.SectionOrder, sectionNames(pairs))
	assert.Equal(t, dxf.Pair{Code: 0, Value: "EOF"}, pairs[len(pairs)-1])

	doc, _, err := g.Build(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Section(dxf.SectionEntities).Pairs)
}

func TestGenerate_SingleLine(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())
	doc, report, err := g.Build([]domain.VectorElement{domain.NewLine(0, 0, 100, 100, 0)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Lines)

	lines := entitiesOf(doc, dxf.SectionEntities, "LINE")
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, []string{"0.0"}, values(line, 10))
	assert.Equal(t, []string{"0.0"}, values(line, 20))
	assert.Equal(t, []string{"100.0"}, values(line, 11))
	assert.Equal(t, []string{"100.0"}, values(line, 21))
	assert.Equal(t, []string{"AcDbEntity", "AcDbLine"}, values(line, dxf.CodeSubclass))
	assert.Equal(t, []string{DefaultLayer}, values(line, 8))
	assert.Empty(t, values(line, 370), "zero thickness keeps the layer lineweight")
}

func TestGenerate_TextStacksUpward(t *testing.T) {
	opts := DefaultOptions()
	opts.TextOriginX = 5
	opts.TextOriginY = 20
	g := newTestGenerator(t, opts)

	doc, report, err := g.Build(nil, []string{"first", "second", "third\tline\nbreak"})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Texts)

	texts := entitiesOf(doc, dxf.SectionEntities, "TEXT")
	require.Len(t, texts, 3)

	var ys []string
	for _, text := range texts {
		assert.Equal(t, []string{"5.0"}, values(text, 10))
		assert.Equal(t, []string{"2.5"}, values(text, 40))
		assert.Equal(t, []string{"Standard"}, values(text, 7))
		ys = append(ys, values(text, 20)...)
	}
	assert.Equal(t, []string{"20.0", "30.0", "40.0"}, ys)
	assert.Equal(t, []string{"third line break"}, values(texts[2], 1))
}

func TestGenerate_SkipsUnsupportedPrimitives(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())
	vectors := []domain.VectorElement{
		{Kind: domain.PrimitiveCircle, Points: []float64{0, 0, 5}},
		domain.NewLine(0, 0, 1, 1, 0),
		{Kind: domain.PrimitiveLine, Points: []float64{1, 2}},
		{Kind: domain.PrimitiveKind(42), Points: []float64{0, 0, 1, 1}},
	}

	doc, report, err := g.Build(vectors, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Lines)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, 1, report.Malformed)
	assert.Equal(t, 1, report.SkippedByKind[domain.PrimitiveCircle])
	assert.Equal(t, 1, report.SkippedByKind[domain.PrimitiveKind(42)])
	assert.False(t, report.Complete())
	assert.Len(t, entitiesOf(doc, dxf.SectionEntities, "LINE"), 1)
	assert.Empty(t, entitiesOf(doc, dxf.SectionEntities, "CIRCLE"))
}

func TestGenerate_NonFiniteLineIsMalformed(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())
	nan := domain.NewLine(0, 0, 1, 1, 0)
	nan.Points[2] = math.NaN()

	_, report, err := g.Build([]domain.VectorElement{nan}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Lines)
	assert.Equal(t, 1, report.Malformed)
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())
	out := filepath.Join(t.TempDir(), "drawing.dwg")

	_, err := g.Generate([]domain.VectorElement{domain.NewLine(0, 0, 1, 1, 0)}, nil, out, domain.FormatDWG)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
	assert.True(t, domain.IsType(err, domain.ErrorTypeUnsupportedFormat))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no file may be created for an unsupported format")

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerate_LegacyMatchesDirect(t *testing.T) {
	vectors := []domain.VectorElement{
		domain.NewLine(0, 0, 100, 0, 1),
		domain.NewLine(100, 0, 100, 50, 0.5),
	}
	texts := []string{"Title", "Größe 3 €"}
	dir := t.TempDir()

	direct := newTestGenerator(t, DefaultOptions())
	_, err := direct.Generate(vectors, texts, filepath.Join(dir, "direct.dxf"), domain.FormatDXF)
	require.NoError(t, err)

	legacy := newTestGenerator(t, DefaultOptions())
	legacy.SetVectorElements(vectors)
	legacy.SetTextElements(texts)
	_, err = legacy.GenerateFile(filepath.Join(dir, "legacy.dxf"), domain.FormatDXF)
	require.NoError(t, err)

	a, err := os.ReadFile(filepath.Join(dir, "direct.dxf"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "legacy.dxf"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, string(a), "Gr\xf6\xdfe 3 \x80")
}

func TestGenerate_Idempotent(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())
	vectors := []domain.VectorElement{domain.NewLine(1, 2, 3, 4, 0.75)}
	texts := []string{"repeat"}

	assert.Equal(t, encode(t, g, vectors, texts), encode(t, g, vectors, texts))
}

func TestGenerate_DifferentContentDifferentVersionGUID(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())
	a, _, err := g.Build(nil, []string{"a"})
	require.NoError(t, err)
	b, _, err := g.Build(nil, []string{"b"})
	require.NoError(t, err)

	assert.NotEqual(t, headerValue(t, a, "$VERSIONGUID"), headerValue(t, b, "$VERSIONGUID"))
	assert.Equal(t, headerValue(t, a, "$FINGERPRINTGUID"), headerValue(t, b, "$FINGERPRINTGUID"))
	assert.Regexp(t, `^\{[0-9A-F-]{36}\}$`, headerValue(t, a, "$VERSIONGUID"))
}

func TestGenerate_HandlesAreUniqueAndBelowSeed(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())
	vectors := make([]domain.VectorElement, 0, 50)
	for i := 0; i < 50; i++ {
		vectors = append(vectors, domain.NewLine(0, float64(i), 10, float64(i), 0))
	}

	doc, report, err := g.Build(vectors, []string{"x", "y"})
	require.NoError(t, err)

	handles := dxf.Handles(doc)
	assert.Len(t, handles, report.Handles)

	seen := make(map[dxf.Handle]bool, len(handles))
	var max dxf.Handle
	for _, h := range handles {
		assert.False(t, seen[h], "handle %s repeated", h)
		seen[h] = true
		if h > max {
			max = h
		}
	}

	seed, err := dxf.ParseHandle(headerValue(t, doc, "$HANDSEED"))
	require.NoError(t, err)
	assert.Greater(t, uint64(seed), uint64(max))
}

func TestGenerate_TableRecordsOwnedByTable(t *testing.T) {
	opts := DefaultOptions()
	opts.GeometryLayer = "GEOMETRY"
	opts.TextLayer = "TEXT"
	g := newTestGenerator(t, opts)

	doc, _, err := g.Build(nil, nil)
	require.NoError(t, err)

	pairs := doc.Section(dxf.SectionTables).Pairs
	var table string
	var tableHandle string
	records := make(map[string]int)
	for i := 0; i < len(pairs); i++ {
		p := pairs[i]
		if p.Code != dxf.CodeEntityType {
			continue
		}
		switch p.Value {
		case "TABLE":
			table = pairs[i+1].Value
			require.Equal(t, dxf.CodeHandle, pairs[i+2].Code)
			tableHandle = pairs[i+2].Value
			assert.Equal(t, dxf.Pair{Code: dxf.CodeOwner, Value: "0"}, pairs[i+3])
		case "ENDTAB":
			table = ""
		default:
			require.NotEmpty(t, table, "record %s outside a table", p.Value)
			assert.Equal(t, table, p.Value)
			assert.Contains(t, []int{dxf.CodeHandle, dxf.CodeDimHandle}, pairs[i+1].Code)
			assert.Equal(t, dxf.Pair{Code: dxf.CodeOwner, Value: tableHandle}, pairs[i+2],
				"%s record must be owned by its table", p.Value)
			records[p.Value]++
		}
	}

	for _, name := range []string{"VPORT", "LTYPE", "LAYER", "STYLE", "VIEW", "UCS", "APPID", "DIMSTYLE", "BLOCK_RECORD"} {
		assert.GreaterOrEqual(t, records[name], 1, "table %s needs a record", name)
	}
	assert.Equal(t, 3, records["LAYER"])
	assert.Equal(t, 2, records["BLOCK_RECORD"])
}

func TestGenerate_Layers(t *testing.T) {
	opts := DefaultOptions()
	opts.GeometryLayer = "GEOMETRY"
	opts.TextLayer = "geometry"
	g := newTestGenerator(t, opts)

	doc, _, err := g.Build([]domain.VectorElement{domain.NewLine(0, 0, 1, 0, 0)}, []string{"t"})
	require.NoError(t, err)

	var names []string
	for _, layer := range entitiesOf(doc, dxf.SectionTables, "LAYER") {
		names = append(names, values(layer, dxf.CodeName)...)
	}
	assert.Equal(t, []string{"0", "GEOMETRY"}, names)

	line := entitiesOf(doc, dxf.SectionEntities, "LINE")[0]
	assert.Equal(t, []string{"GEOMETRY"}, values(line, 8))
	text := entitiesOf(doc, dxf.SectionEntities, "TEXT")[0]
	assert.Equal(t, []string{"geometry"}, values(text, 8))
}

func TestGenerate_LineWeightPropagation(t *testing.T) {
	vectors := []domain.VectorElement{domain.NewLine(0, 0, 1, 0, 1)}

	g := newTestGenerator(t, DefaultOptions())
	doc, _, err := g.Build(vectors, nil)
	require.NoError(t, err)
	line := entitiesOf(doc, dxf.SectionEntities, "LINE")[0]
	assert.Equal(t, []string{"35"}, values(line, 370))
	assert.Equal(t, "1", headerValue(t, doc, "$LWDISPLAY"))

	opts := DefaultOptions()
	opts.PropagateLineWeight = false
	g = newTestGenerator(t, opts)
	doc, _, err = g.Build(vectors, nil)
	require.NoError(t, err)
	line = entitiesOf(doc, dxf.SectionEntities, "LINE")[0]
	assert.Empty(t, values(line, 370))
	assert.Equal(t, "0", headerValue(t, doc, "$LWDISPLAY"))
}

func TestGenerate_NonFiniteThicknessStaysByLayer(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())
	vectors := []domain.VectorElement{
		domain.NewLine(0, 0, 1, 0, math.Inf(1)),
		domain.NewLine(0, 0, 1, 0, math.NaN()),
		domain.NewLine(0, 0, 1, 0, -2),
	}

	doc, report, err := g.Build(vectors, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Lines)
	for _, line := range entitiesOf(doc, dxf.SectionEntities, "LINE") {
		assert.Empty(t, values(line, 370))
	}
}

func TestGenerate_ObjectsGraph(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())
	doc, _, err := g.Build(nil, nil)
	require.NoError(t, err)

	dicts := entitiesOf(doc, dxf.SectionObjects, "DICTIONARY")
	require.Len(t, dicts, 4)
	root := dicts[0]
	assert.Equal(t, "C", root[0].Value)
	assert.Equal(t, []string{"ACAD_GROUP", "ACAD_LAYOUT", "ACAD_MLINESTYLE", "ACAD_PLOTSTYLENAME"}, values(root, 3))
	assert.Equal(t, []string{"0"}, values(root, dxf.CodeOwner))

	// owner chain: root -> group -> style dictionary -> style record
	group, styles := dicts[1], dicts[3]
	assert.Equal(t, "D", group[0].Value)
	assert.Equal(t, []string{"C"}, values(group, dxf.CodeOwner))
	assert.Equal(t, "17", styles[0].Value)
	assert.Equal(t, []string{"D"}, values(styles, dxf.CodeOwner))
	assert.Equal(t, []string{"18"}, values(styles, dxf.CodeSoftPointer))

	assert.Len(t, entitiesOf(doc, dxf.SectionObjects, "LAYOUT"), 2)
	mline := entitiesOf(doc, dxf.SectionObjects, "MLINESTYLE")
	require.Len(t, mline, 1)
	assert.Equal(t, "18", mline[0][0].Value)
	assert.Equal(t, []string{"0.5", "-0.5"}, values(mline[0], 49))
	assert.Equal(t, []string{"17", "17"}, values(mline[0], dxf.CodeOwner), "reactor and owner")

	placeholder := entitiesOf(doc, dxf.SectionObjects, "ACDBPLACEHOLDER")
	require.Len(t, placeholder, 1)
	for _, layer := range entitiesOf(doc, dxf.SectionTables, "LAYER") {
		assert.Equal(t, []string{placeholder[0][0].Value}, values(layer, 390))
	}
}

func TestGenerate_Units(t *testing.T) {
	tests := []struct {
		units       string
		insunits    string
		measurement string
	}{
		{"mm", "4", "1"},
		{"in", "1", "0"},
		{"ft", "2", "0"},
		{"m", "6", "1"},
		{"unitless", "0", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.units, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Units = tt.units
			doc, _, err := newTestGenerator(t, opts).Build(nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.insunits, headerValue(t, doc, "$INSUNITS"))
			assert.Equal(t, tt.measurement, headerValue(t, doc, "$MEASUREMENT"))
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestGenerate_SinkFailure(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())

	_, err := g.WriteTo(failingWriter{}, nil, []string{"x"}, domain.FormatDXF)
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeIO))

	out := filepath.Join(t.TempDir(), "missing", "drawing.dxf")
	_, err = g.Generate(nil, nil, out, domain.FormatDXF)
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeIO))
}

func TestGenerate_RenameFailureLeavesNoTempFile(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())
	dir := t.TempDir()
	out := filepath.Join(dir, "drawing.dxf")
	require.NoError(t, os.Mkdir(out, 0o755))

	_, err := g.Generate([]domain.VectorElement{domain.NewLine(0, 0, 1, 1, 0)}, []string{"x"}, out, domain.FormatDXF)
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeIO))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the pre-existing directory may remain")
	assert.Equal(t, "drawing.dxf", entries[0].Name())
	assert.True(t, entries[0].IsDir())
}

func TestGenerate_Concurrent(t *testing.T) {
	g := newTestGenerator(t, DefaultOptions())
	vectors := []domain.VectorElement{
		domain.NewLine(0, 0, 10, 0, 0.5),
		domain.NewLine(10, 0, 10, 10, 0.5),
	}
	want := encode(t, g, vectors, []string{"concurrent"})

	results := make([][]byte, 8)
	eg, _ := errgroup.WithContext(context.Background())
	for i := range results {
		eg.Go(func() error {
			var buf bytes.Buffer
			if _, err := g.WriteTo(&buf, vectors, []string{"concurrent"}, domain.FormatDXF); err != nil {
				return err
			}
			results[i] = buf.Bytes()
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestNewGenerator_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"zero pitch", func(o *Options) { o.LinePitch = 0 }},
		{"NaN pitch", func(o *Options) { o.LinePitch = math.NaN() }},
		{"infinite height", func(o *Options) { o.TextHeight = math.Inf(1) }},
		{"NaN origin x", func(o *Options) { o.TextOriginX = math.NaN() }},
		{"infinite origin y", func(o *Options) { o.TextOriginY = math.Inf(-1) }},
		{"infinite max x", func(o *Options) { o.LimitsMaxX = math.Inf(1) }},
		{"NaN max y", func(o *Options) { o.LimitsMaxY = math.NaN() }},
		{"infinite min x", func(o *Options) { o.LimitsMinX = math.Inf(-1) }},
		{"NaN min y", func(o *Options) { o.LimitsMinY = math.NaN() }},
		{"empty limits", func(o *Options) { o.LimitsMaxX = o.LimitsMinX }},
		{"unknown units", func(o *Options) { o.Units = "furlong" }},
		{"empty layer", func(o *Options) { o.TextLayer = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			_, err := NewGenerator(opts, nil)
			require.Error(t, err)
			assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
		})
	}
}

func TestLineWeight(t *testing.T) {
	tests := []struct {
		thickness float64
		want      int
	}{
		{0.1, 5},
		{0.25, 9},
		{0.5, 18},
		{1, 35},
		{2, 70},
		{100, 211},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, lineWeight(tt.thickness), "thickness %v", tt.thickness)
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(domain.PrimitiveLine))
	assert.False(t, Supported(domain.PrimitiveCurve))
	assert.False(t, Supported(domain.PrimitiveCircle))
	assert.False(t, Supported(domain.PrimitiveRectangle))
}
