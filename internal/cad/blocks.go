package cad

import (
	"github.com/spherical/pdf2cad/internal/dxf"
)

// blocks writes the two mandatory block definitions. Both sub-records are
// owned by the block's BLOCK_RECORD.
func (b *builder) blocks() {
	s := b.doc.NewSection(dxf.SectionBlocks)
	b.block(s, "*Model_Space", b.modelSpace, false)
	b.block(s, "*Paper_Space", b.paperSpace, true)
}

func (b *builder) block(s *dxf.Section, name string, owner dxf.Handle, paper bool) {
	s.Str(dxf.CodeEntityType, "BLOCK")
	s.Handle(dxf.CodeHandle, b.alloc.Next())
	s.Handle(dxf.CodeOwner, owner)
	s.Str(dxf.CodeSubclass, "AcDbEntity")
	if paper {
		s.Int(67, 1)
	}
	s.Str(8, DefaultLayer)
	s.Str(dxf.CodeSubclass, "AcDbBlockBegin")
	s.Str(dxf.CodeName, name)
	s.Int(70, 0)
	s.Point(10, 0, 0, 0)
	s.Str(3, name)
	s.Str(1, "")

	s.Str(dxf.CodeEntityType, "ENDBLK")
	s.Handle(dxf.CodeHandle, b.alloc.Next())
	s.Handle(dxf.CodeOwner, owner)
	s.Str(dxf.CodeSubclass, "AcDbEntity")
	if paper {
		s.Int(67, 1)
	}
	s.Str(8, DefaultLayer)
	s.Str(dxf.CodeSubclass, "AcDbBlockEnd")
}
