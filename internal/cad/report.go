package cad

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spherical/pdf2cad/internal/domain"
)

// Report summarizes one generation call
type Report struct {
	Lines     int
	Texts     int
	Skipped   int
	Malformed int
	Handles   int
	Bytes     int64

	// SkippedByKind counts primitives that had no translation
	SkippedByKind map[domain.PrimitiveKind]int
}

func newReport() *Report {
	return &Report{SkippedByKind: make(map[domain.PrimitiveKind]int)}
}

// Entities returns how many entity records were written
func (r *Report) Entities() int {
	return r.Lines + r.Texts
}

// Complete reports whether every input primitive was translated
func (r *Report) Complete() bool {
	return r.Skipped == 0
}

func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d lines, %d texts, %d skipped", r.Lines, r.Texts, r.Skipped)
	if len(r.SkippedByKind) > 0 || r.Malformed > 0 {
		kinds := make([]domain.PrimitiveKind, 0, len(r.SkippedByKind))
		for k := range r.SkippedByKind {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		parts := make([]string, 0, len(kinds)+1)
		for _, k := range kinds {
			parts = append(parts, fmt.Sprintf("%s=%d", k, r.SkippedByKind[k]))
		}
		if r.Malformed > 0 {
			parts = append(parts, fmt.Sprintf("malformed=%d", r.Malformed))
		}
		fmt.Fprintf(&sb, " (%s)", strings.Join(parts, ", "))
	}
	return sb.String()
}
