package dxf

import (
	"fmt"

	"github.com/spherical/pdf2cad/internal/domain"
)

// Verify checks the structural invariants an encoder will not: the section
// sequence, handle uniqueness and that every owner reference names a handle
// defined earlier in the document. reserved lists the skeleton handles that
// may legitimately appear in the reserved range.
func Verify(doc *Document, reserved ...Handle) error {
	if len(doc.Sections) != len(SectionOrder) {
		return domain.InternalError(fmt.Sprintf("document has %d sections, want %d", len(doc.Sections), len(SectionOrder)), nil)
	}
	for i, s := range doc.Sections {
		if s.Name != SectionOrder[i] {
			return domain.InternalError(fmt.Sprintf("section %d is %s, want %s", i, s.Name, SectionOrder[i]), nil)
		}
	}

	allowed := make(map[Handle]bool, len(reserved))
	for _, h := range reserved {
		allowed[h] = true
	}

	defined := make(map[Handle]string)
	for _, s := range doc.Sections {
		// header variables reuse group 5 for $HANDSEED
		if s.Name == SectionHeader {
			continue
		}
		for i, p := range s.Pairs {
			switch p.Code {
			case CodeHandle, CodeDimHandle:
				h, err := ParseHandle(p.Value)
				if err != nil {
					return domain.InternalError(fmt.Sprintf("%s pair %d", s.Name, i), err)
				}
				if h == NoOwner {
					return domain.InternalError(fmt.Sprintf("%s pair %d: zero handle", s.Name, i), nil)
				}
				if IsReserved(h) && !allowed[h] {
					return domain.InternalError(fmt.Sprintf("%s pair %d: handle %s is in the reserved range", s.Name, i, h), nil)
				}
				if prev, dup := defined[h]; dup {
					return domain.InternalError(fmt.Sprintf("handle %s defined twice (%s and %s)", h, prev, s.Name), nil)
				}
				defined[h] = s.Name
			case CodeOwner:
				h, err := ParseHandle(p.Value)
				if err != nil {
					return domain.InternalError(fmt.Sprintf("%s pair %d", s.Name, i), err)
				}
				if h == NoOwner {
					continue
				}
				if _, ok := defined[h]; !ok {
					return domain.InternalError(fmt.Sprintf("%s pair %d: owner %s is not defined before use", s.Name, i, h), nil)
				}
			}
		}
	}
	return nil
}

// Handles returns every handle defined outside the header, in document order
func Handles(doc *Document) []Handle {
	var out []Handle
	for _, s := range doc.Sections {
		if s.Name == SectionHeader {
			continue
		}
		for _, p := range s.Pairs {
			if p.Code != CodeHandle && p.Code != CodeDimHandle {
				continue
			}
			if h, err := ParseHandle(p.Value); err == nil {
				out = append(out, h)
			}
		}
	}
	return out
}
