// Package dxf models an ASCII drawing-interchange document as ordered
// group-code/value pairs and writes it out.
package dxf

import (
	"fmt"
	"strconv"
	"strings"
)

// Handle identifies a referenceable object. It is written as upper-case hex.
type Handle uint64

const (
	// NoOwner is the owner written for top-level objects.
	NoOwner Handle = 0

	// FirstAllocated is the first value an Allocator issues. Every non-zero
	// handle below it belongs to the reserved skeleton range.
	FirstAllocated Handle = 0x20
)

func (h Handle) String() string {
	return strings.ToUpper(strconv.FormatUint(uint64(h), 16))
}

// Reserved returns a literal skeleton handle. It panics when v is outside
// 1..FirstAllocated-1, which can only happen through a bad constant.
func Reserved(v uint64) Handle {
	if v == 0 || v >= uint64(FirstAllocated) {
		panic(fmt.Sprintf("dxf: handle %X is outside the reserved range", v))
	}
	return Handle(v)
}

// IsReserved reports whether h lies in the reserved skeleton range
func IsReserved(h Handle) bool {
	return h != NoOwner && h < FirstAllocated
}

// ParseHandle parses the hex form written by String
func ParseHandle(s string) (Handle, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse handle %q: %w", s, err)
	}
	return Handle(v), nil
}

// Allocator issues handles for one document. The zero value is ready to use.
// It is not safe for concurrent use; give each document its own allocator.
type Allocator struct {
	next   Handle
	issued int
}

// NewAllocator returns an allocator seeded at FirstAllocated
func NewAllocator() *Allocator {
	return &Allocator{next: FirstAllocated}
}

// Next returns a handle that this allocator has never issued before
func (a *Allocator) Next() Handle {
	if a.next < FirstAllocated {
		a.next = FirstAllocated
	}
	h := a.next
	a.next++
	a.issued++
	return h
}

// Issued returns how many handles have been handed out
func (a *Allocator) Issued() int {
	return a.issued
}

// Seed returns the value the next call to Next would return. It is larger
// than every handle issued so far.
func (a *Allocator) Seed() Handle {
	if a.next < FirstAllocated {
		return FirstAllocated
	}
	return a.next
}
