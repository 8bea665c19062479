package cad

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/spherical/pdf2cad/internal/dxf"
)

// acadVersion is the AC1015 (R2000) release the output conforms to
const acadVersion = "AC1015"

// Release names the DXF release written by the generator
const Release = "R2000 (" + acadVersion + ")"

// guidNamespace scopes the name-based GUIDs written to the header
var guidNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("pdf2cad.dxf"))

func (b *builder) header() {
	s := b.doc.NewSection(dxf.SectionHeader)
	variable := func(name string) { s.Str(dxf.CodeVariable, name) }

	variable("$ACADVER")
	s.Str(1, acadVersion)
	variable("$DWGCODEPAGE")
	s.Str(3, dxf.CodePage)

	variable("$INSBASE")
	s.Point(10, 0, 0, 0)
	variable("$LIMMIN")
	s.Point2(10, b.opts.LimitsMinX, b.opts.LimitsMinY)
	variable("$LIMMAX")
	s.Point2(10, b.opts.LimitsMaxX, b.opts.LimitsMaxY)

	insunits, measurement := b.opts.insUnits()
	variable("$LUNITS")
	s.Int(70, 2)
	variable("$MEASUREMENT")
	s.Int(70, measurement)
	variable("$INSUNITS")
	s.Int(70, insunits)

	variable("$LTSCALE")
	s.Float(40, 1)
	variable("$TEXTSIZE")
	s.Float(40, b.opts.TextHeight)
	variable("$TEXTSTYLE")
	s.Str(7, "Standard")
	variable("$CLAYER")
	s.Str(8, DefaultLayer)
	variable("$CELTYPE")
	s.Str(6, "ByLayer")
	variable("$CELWEIGHT")
	s.Int(370, lineWeightByLayer)
	variable("$LWDISPLAY")
	if b.opts.PropagateLineWeight {
		s.Int(290, 1)
	} else {
		s.Int(290, 0)
	}

	variable("$HANDSEED")
	b.handseed = s.Handle(dxf.CodeHandle, dxf.FirstAllocated)
	variable("$FINGERPRINTGUID")
	s.Str(2, formatGUID(uuid.NewSHA1(guidNamespace, []byte(b.opts.DrawingName))))
	variable("$VERSIONGUID")
	b.versionGUID = s.Add(2, "")
}

// finishHeader back-patches the values that depend on later phases
func (b *builder) finishHeader() {
	s := b.doc.Section(dxf.SectionHeader)
	s.Set(b.handseed, b.alloc.Seed().String())
	s.Set(b.versionGUID, formatGUID(contentGUID(b.doc)))
}

// contentGUID derives a version GUID from the entity stream so that equal
// inputs produce equal files and different drawings differ.
func contentGUID(doc *dxf.Document) uuid.UUID {
	var sb strings.Builder
	if s := doc.Section(dxf.SectionEntities); s != nil {
		for _, p := range s.Pairs {
			sb.WriteString(strconv.Itoa(p.Code))
			sb.WriteByte('\n')
			sb.WriteString(p.Value)
			sb.WriteByte('\n')
		}
	}
	return uuid.NewSHA1(guidNamespace, []byte(sb.String()))
}

func formatGUID(id uuid.UUID) string {
	return "{" + strings.ToUpper(id.String()) + "}"
}
