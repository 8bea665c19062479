package cad

import (
	"github.com/spherical/pdf2cad/internal/dxf"
)

// recordWriter writes one table record owned by the given table handle
type recordWriter func(s *dxf.Section, owner dxf.Handle)

// tableSpec describes one symbol table and the records it always carries
type tableSpec struct {
	name    string
	records []recordWriter
}

// tables writes the symbol tables in the order R2000 readers expect. Every
// record's owner is the handle minted for its enclosing TABLE.
func (b *builder) tables() {
	s := b.doc.NewSection(dxf.SectionTables)

	specs := []tableSpec{
		{name: "VPORT", records: []recordWriter{b.vportActive}},
		{name: "LTYPE", records: []recordWriter{
			b.linetype("ByBlock", ""),
			b.linetype("ByLayer", ""),
			b.linetype("Continuous", "Solid line"),
		}},
		{name: "LAYER", records: b.layerRecords()},
		{name: "STYLE", records: []recordWriter{b.styleStandardRecord}},
		{name: "VIEW", records: []recordWriter{b.viewSheet}},
		{name: "UCS", records: []recordWriter{b.ucsSheet}},
		{name: "APPID", records: []recordWriter{
			b.appID("ACAD"),
			b.appID("PDF2CAD"),
		}},
		{name: "DIMSTYLE", records: []recordWriter{b.dimStyleStandard}},
		{name: "BLOCK_RECORD", records: []recordWriter{
			b.blockRecord("*Model_Space", &b.modelSpace, &b.modelLayout),
			b.blockRecord("*Paper_Space", &b.paperSpace, &b.paperLayout),
		}},
	}

	for _, spec := range specs {
		b.table(s, spec)
	}
}

func (b *builder) table(s *dxf.Section, spec tableSpec) {
	h := b.alloc.Next()
	s.Str(dxf.CodeEntityType, "TABLE")
	s.Str(dxf.CodeName, spec.name)
	s.Handle(dxf.CodeHandle, h)
	s.Handle(dxf.CodeOwner, dxf.NoOwner)
	s.Str(dxf.CodeSubclass, "AcDbSymbolTable")
	s.Int(70, len(spec.records))
	if spec.name == "DIMSTYLE" {
		s.Str(dxf.CodeSubclass, "AcDbDimStyleTable")
		s.Int(71, 0)
	}
	for _, write := range spec.records {
		write(s, h)
	}
	s.Str(dxf.CodeEntityType, "ENDTAB")
}

// record writes the common record prefix and returns the record's handle
func (b *builder) record(s *dxf.Section, kind string, owner dxf.Handle, subclass string) dxf.Handle {
	h := b.alloc.Next()
	s.Str(dxf.CodeEntityType, kind)
	if kind == "DIMSTYLE" {
		s.Handle(dxf.CodeDimHandle, h)
	} else {
		s.Handle(dxf.CodeHandle, h)
	}
	s.Handle(dxf.CodeOwner, owner)
	s.Str(dxf.CodeSubclass, "AcDbSymbolTableRecord")
	s.Str(dxf.CodeSubclass, subclass)
	return h
}

func (b *builder) sheetCenter() (x, y, width, height float64) {
	width = b.opts.LimitsMaxX - b.opts.LimitsMinX
	height = b.opts.LimitsMaxY - b.opts.LimitsMinY
	return b.opts.LimitsMinX + width/2, b.opts.LimitsMinY + height/2, width, height
}

func (b *builder) vportActive(s *dxf.Section, owner dxf.Handle) {
	cx, cy, width, height := b.sheetCenter()
	b.record(s, "VPORT", owner, "AcDbViewportTableRecord")
	s.Str(dxf.CodeName, "*Active")
	s.Int(70, 0)
	s.Point2(10, 0, 0)
	s.Point2(11, 1, 1)
	s.Point2(12, cx, cy)
	s.Point2(13, 0, 0)
	s.Point2(14, 10, 10)
	s.Point2(15, 10, 10)
	s.Point(16, 0, 0, 1)
	s.Point(17, 0, 0, 0)
	s.Float(40, height)
	s.Float(41, width/height)
	s.Float(42, 50)
	s.Float(43, 0)
	s.Float(44, 0)
	s.Float(50, 0)
	s.Float(51, 0)
	s.Int(71, 0)
	s.Int(72, 100)
	s.Int(73, 1)
	s.Int(74, 3)
	s.Int(75, 0)
	s.Int(76, 0)
	s.Int(77, 0)
	s.Int(78, 0)
}

func (b *builder) linetype(name, description string) recordWriter {
	return func(s *dxf.Section, owner dxf.Handle) {
		b.record(s, "LTYPE", owner, "AcDbLinetypeTableRecord")
		s.Str(dxf.CodeName, name)
		s.Int(70, 0)
		s.Str(3, description)
		s.Int(72, 65)
		s.Int(73, 0)
		s.Float(40, 0)
	}
}

func (b *builder) layerRecords() []recordWriter {
	names := b.opts.layers()
	out := make([]recordWriter, 0, len(names))
	for _, name := range names {
		out = append(out, func(s *dxf.Section, owner dxf.Handle) {
			b.record(s, "LAYER", owner, "AcDbLayerTableRecord")
			s.Str(dxf.CodeName, name)
			s.Int(70, 0)
			s.Int(62, 7)
			s.Str(6, "Continuous")
			s.Int(370, lineWeightDefault)
			s.Handle(390, b.mint(&b.plotStyleNormal))
		})
	}
	return out
}

func (b *builder) styleStandardRecord(s *dxf.Section, owner dxf.Handle) {
	b.styleStandard = b.record(s, "STYLE", owner, "AcDbTextStyleTableRecord")
	s.Str(dxf.CodeName, "Standard")
	s.Int(70, 0)
	s.Float(40, 0)
	s.Float(41, 1)
	s.Float(50, 0)
	s.Int(71, 0)
	s.Float(42, b.opts.TextHeight)
	s.Str(3, "txt")
	s.Str(4, "")
}

func (b *builder) viewSheet(s *dxf.Section, owner dxf.Handle) {
	cx, cy, width, height := b.sheetCenter()
	b.record(s, "VIEW", owner, "AcDbViewTableRecord")
	s.Str(dxf.CodeName, "Sheet")
	s.Int(70, 0)
	s.Float(40, height)
	s.Point2(10, cx, cy)
	s.Float(41, width)
	s.Point(11, 0, 0, 1)
	s.Point(12, 0, 0, 0)
	s.Float(42, 50)
	s.Float(43, 0)
	s.Float(44, 0)
	s.Float(50, 0)
	s.Int(71, 0)
	s.Int(281, 0)
	s.Int(72, 0)
}

func (b *builder) ucsSheet(s *dxf.Section, owner dxf.Handle) {
	b.record(s, "UCS", owner, "AcDbUCSTableRecord")
	s.Str(dxf.CodeName, "Sheet")
	s.Int(70, 0)
	s.Point(10, 0, 0, 0)
	s.Point(11, 1, 0, 0)
	s.Point(12, 0, 1, 0)
	s.Int(79, 0)
	s.Float(146, 0)
}

func (b *builder) appID(name string) recordWriter {
	return func(s *dxf.Section, owner dxf.Handle) {
		b.record(s, "APPID", owner, "AcDbRegAppTableRecord")
		s.Str(dxf.CodeName, name)
		s.Int(70, 0)
	}
}

func (b *builder) dimStyleStandard(s *dxf.Section, owner dxf.Handle) {
	b.record(s, "DIMSTYLE", owner, "AcDbDimStyleTableRecord")
	s.Str(dxf.CodeName, "Standard")
	s.Int(70, 0)
	s.Float(41, 2.5)
	s.Float(42, 0.625)
	s.Float(43, 3.75)
	s.Float(44, 1.25)
	s.Float(140, b.opts.TextHeight)
	s.Float(141, 2.5)
	s.Float(147, 0.625)
	s.Int(77, 1)
	s.Int(78, 8)
	s.Handle(dxf.CodeHardPointer, b.styleStandard)
}

func (b *builder) blockRecord(name string, record, layout *dxf.Handle) recordWriter {
	return func(s *dxf.Section, owner dxf.Handle) {
		*record = b.record(s, "BLOCK_RECORD", owner, "AcDbBlockTableRecord")
		s.Str(dxf.CodeName, name)
		s.Handle(dxf.CodeHardPointer, b.mint(layout))
		s.Int(70, 0)
		s.Int(280, 1)
		s.Int(281, 0)
	}
}
