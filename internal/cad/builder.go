// Package cad assembles extracted primitives and text into a DXF document.
package cad

import (
	"fmt"

	"github.com/spherical/pdf2cad/internal/domain"
	"github.com/spherical/pdf2cad/internal/dxf"
)

// Literal skeleton handles used by the objects section. They live in the
// reserved range, which the allocator never issues.
var (
	handleRootDictionary  = dxf.Reserved(0xC)
	handleGroupDictionary = dxf.Reserved(0xD)
	handleMLineStyleDict  = dxf.Reserved(0x17)
	handleMLineStandard   = dxf.Reserved(0x18)
)

var reservedHandles = []dxf.Handle{
	handleRootDictionary,
	handleGroupDictionary,
	handleMLineStyleDict,
	handleMLineStandard,
}

// builder runs the fixed phase sequence for a single document. It owns its
// allocator and is discarded once the document is built.
type builder struct {
	opts   Options
	log    domain.Reporter
	alloc  *dxf.Allocator
	doc    *dxf.Document
	report *Report

	handseed    int
	versionGUID int

	// cross references fixed while the tables are written
	styleStandard dxf.Handle
	modelSpace    dxf.Handle
	paperSpace    dxf.Handle

	// handles referenced before the object that carries them is written
	modelLayout     dxf.Handle
	paperLayout     dxf.Handle
	plotStyleNormal dxf.Handle
}

func newBuilder(opts Options, log domain.Reporter) *builder {
	return &builder{
		opts:   opts,
		log:    log,
		alloc:  dxf.NewAllocator(),
		doc:    &dxf.Document{},
		report: newReport(),
	}
}

// build runs every phase in order and verifies the result
func (b *builder) build(vectors []domain.VectorElement, texts []string) (*dxf.Document, *Report, error) {
	b.log.Debug("Writing DXF header...")
	b.header()

	b.log.Debug("Writing classes section...")
	b.doc.NewSection(dxf.SectionClasses)

	b.log.Debug("Writing tables section...")
	b.tables()

	b.log.Debug("Writing blocks section...")
	b.blocks()

	b.log.Debug("Writing entities section...")
	b.entities(vectors, texts)

	b.log.Debug("Writing objects section...")
	b.objects()

	b.finishHeader()

	if err := dxf.Verify(b.doc, reservedHandles...); err != nil {
		b.log.Error("Assembled document failed verification: %v", err)
		return nil, nil, err
	}
	defined := len(dxf.Handles(b.doc))
	if want := b.alloc.Issued() + len(reservedHandles); defined != want {
		return nil, nil, domain.InternalError(fmt.Sprintf("%d handles issued but %d defined", want, defined), nil)
	}
	b.report.Handles = defined
	return b.doc, b.report, nil
}

// mint assigns a handle to *h on first use and returns it
func (b *builder) mint(h *dxf.Handle) dxf.Handle {
	if *h == dxf.NoOwner {
		*h = b.alloc.Next()
	}
	return *h
}
