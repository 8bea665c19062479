package cad

import (
	"github.com/spherical/pdf2cad/internal/dxf"
)

// dictionaryEntry is one name/handle pair in a DICTIONARY object
type dictionaryEntry struct {
	name   string
	handle dxf.Handle
}

// objects writes the non-graphical dictionary graph. The root dictionary is
// owned by nothing; every other object is owned by a dictionary written
// before it.
func (b *builder) objects() {
	s := b.doc.NewSection(dxf.SectionObjects)

	layouts := b.alloc.Next()
	plotStyles := b.alloc.Next()

	b.dictionary(s, handleRootDictionary, dxf.NoOwner, []dictionaryEntry{
		{"ACAD_GROUP", handleGroupDictionary},
		{"ACAD_LAYOUT", layouts},
		{"ACAD_MLINESTYLE", handleMLineStyleDict},
		{"ACAD_PLOTSTYLENAME", plotStyles},
	})
	b.dictionary(s, handleGroupDictionary, handleRootDictionary, nil)

	b.dictionary(s, layouts, handleRootDictionary, []dictionaryEntry{
		{"Layout1", b.paperLayout},
		{"Model", b.modelLayout},
	})
	b.layout(s, b.modelLayout, layouts, "Model", 0, b.modelSpace)
	b.layout(s, b.paperLayout, layouts, "Layout1", 1, b.paperSpace)

	// the style dictionary is named by the root but owned by the group
	// dictionary: root -> group -> style dictionary -> style record
	b.dictionary(s, handleMLineStyleDict, handleGroupDictionary, []dictionaryEntry{
		{"Standard", handleMLineStandard},
	})
	b.mlineStyleStandard(s)

	b.plotStyleDictionary(s, plotStyles)
}

func (b *builder) object(s *dxf.Section, kind string, h, owner dxf.Handle, reactors bool) {
	s.Str(dxf.CodeEntityType, kind)
	s.Handle(dxf.CodeHandle, h)
	if reactors && owner != dxf.NoOwner {
		s.Str(dxf.CodeControlGroup, "{ACAD_REACTORS")
		s.Handle(dxf.CodeOwner, owner)
		s.Str(dxf.CodeControlGroup, "}")
	}
	s.Handle(dxf.CodeOwner, owner)
}

func (b *builder) dictionary(s *dxf.Section, h, owner dxf.Handle, entries []dictionaryEntry) {
	b.object(s, "DICTIONARY", h, owner, false)
	s.Str(dxf.CodeSubclass, "AcDbDictionary")
	s.Int(281, 1)
	for _, e := range entries {
		s.Str(3, e.name)
		s.Handle(dxf.CodeSoftPointer, e.handle)
	}
}

// layout writes a LAYOUT object bound to the given block record. Model
// space uses tab order 0.
func (b *builder) layout(s *dxf.Section, h, owner dxf.Handle, name string, tab int, record dxf.Handle) {
	b.object(s, "LAYOUT", h, owner, true)

	s.Str(dxf.CodeSubclass, "AcDbPlotSettings")
	s.Str(1, "")
	s.Str(2, "none_device")
	s.Str(4, "")
	s.Str(6, "")
	s.Float(40, 0)
	s.Float(41, 0)
	s.Float(42, 0)
	s.Float(43, 0)
	s.Float(44, 0)
	s.Float(45, 0)
	s.Float(46, 0)
	s.Float(47, 0)
	s.Float(48, 0)
	s.Float(49, 0)
	s.Float(140, 0)
	s.Float(141, 0)
	s.Float(142, 1)
	s.Float(143, 1)
	if tab == 0 {
		s.Int(70, 1712)
	} else {
		s.Int(70, 688)
	}
	s.Int(72, 1)
	s.Int(73, 0)
	s.Int(74, 5)
	s.Str(7, "")
	s.Int(75, 16)
	s.Float(147, 1)
	s.Float(148, 0)
	s.Float(149, 0)

	s.Str(dxf.CodeSubclass, "AcDbLayout")
	s.Str(1, name)
	s.Int(70, 1)
	s.Int(71, tab)
	s.Point2(10, b.opts.LimitsMinX, b.opts.LimitsMinY)
	s.Point2(11, b.opts.LimitsMaxX, b.opts.LimitsMaxY)
	s.Point(12, 0, 0, 0)
	s.Point(14, b.opts.LimitsMinX, b.opts.LimitsMinY, 0)
	s.Point(15, b.opts.LimitsMaxX, b.opts.LimitsMaxY, 0)
	s.Float(146, 0)
	s.Point(13, 0, 0, 0)
	s.Point(16, 1, 0, 0)
	s.Point(17, 0, 1, 0)
	s.Int(76, 0)
	s.Handle(dxf.CodeOwner, record)
}

func (b *builder) mlineStyleStandard(s *dxf.Section) {
	b.object(s, "MLINESTYLE", handleMLineStandard, handleMLineStyleDict, true)
	s.Str(dxf.CodeSubclass, "AcDbMlineStyle")
	s.Str(dxf.CodeName, "Standard")
	s.Int(70, 0)
	s.Str(3, "")
	s.Int(62, 256)
	s.Float(51, 90)
	s.Float(52, 90)
	s.Int(71, 2)
	for _, offset := range []float64{0.5, -0.5} {
		s.Float(49, offset)
		s.Int(62, 256)
		s.Str(6, "BYLAYER")
	}
}

// plotStyleDictionary writes the plot-style name dictionary and the
// placeholder every layer's 390 pointer resolves to.
func (b *builder) plotStyleDictionary(s *dxf.Section, h dxf.Handle) {
	normal := b.mint(&b.plotStyleNormal)

	b.object(s, "ACDBDICTIONARYWDFLT", h, handleRootDictionary, false)
	s.Str(dxf.CodeSubclass, "AcDbDictionary")
	s.Int(281, 1)
	s.Str(3, "Normal")
	s.Handle(dxf.CodeSoftPointer, normal)
	s.Str(dxf.CodeSubclass, "AcDbDictionaryWithDefault")
	s.Handle(dxf.CodeHardPointer, normal)

	b.object(s, "ACDBPLACEHOLDER", normal, h, false)
}
