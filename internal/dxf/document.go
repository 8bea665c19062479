package dxf

import (
	"math"
	"strconv"
	"strings"
)

// Section names in the order a document must carry them
const (
	SectionHeader   = "HEADER"
	SectionClasses  = "CLASSES"
	SectionTables   = "TABLES"
	SectionBlocks   = "BLOCKS"
	SectionEntities = "ENTITIES"
	SectionObjects  = "OBJECTS"
)

// SectionOrder is the fixed section sequence of a complete document
var SectionOrder = []string{
	SectionHeader,
	SectionClasses,
	SectionTables,
	SectionBlocks,
	SectionEntities,
	SectionObjects,
}

// Group codes with a structural meaning
const (
	CodeEntityType   = 0
	CodeName         = 2
	CodeHandle       = 5
	CodeVariable     = 9
	CodeSubclass     = 100
	CodeDimHandle    = 105
	CodeOwner        = 330
	CodeHardPointer  = 340
	CodeSoftPointer  = 350
	CodeControlGroup = 102
)

// Pair is one logical field: a group code and its value line
type Pair struct {
	Code  int
	Value string
}

// Section is a named, ordered run of pairs. The SECTION/ENDSEC markers are
// added by the encoder and are not stored here.
type Section struct {
	Name  string
	Pairs []Pair
}

// Add appends a raw pair and returns its index
func (s *Section) Add(code int, value string) int {
	s.Pairs = append(s.Pairs, Pair{Code: code, Value: value})
	return len(s.Pairs) - 1
}

// Str appends a string value
func (s *Section) Str(code int, v string) {
	s.Add(code, v)
}

// Int appends an integer value
func (s *Section) Int(code int, v int) {
	s.Add(code, strconv.Itoa(v))
}

// Float appends a real value
func (s *Section) Float(code int, v float64) {
	s.Add(code, FormatFloat(v))
}

// Handle appends a handle value
func (s *Section) Handle(code int, h Handle) int {
	return s.Add(code, h.String())
}

// Point appends x, y and z under code, code+10 and code+20
func (s *Section) Point(code int, x, y, z float64) {
	s.Float(code, x)
	s.Float(code+10, y)
	s.Float(code+20, z)
}

// Point2 appends x and y under code and code+10
func (s *Section) Point2(code int, x, y float64) {
	s.Float(code, x)
	s.Float(code+10, y)
}

// Set replaces the value of the pair at index i
func (s *Section) Set(i int, value string) {
	s.Pairs[i].Value = value
}

// Len returns the number of pairs
func (s *Section) Len() int {
	return len(s.Pairs)
}

// Document is an ordered list of sections
type Document struct {
	Sections []*Section
}

// NewSection appends an empty section and returns it
func (d *Document) NewSection(name string) *Section {
	s := &Section{Name: name}
	d.Sections = append(d.Sections, s)
	return s
}

// Section returns the first section with the given name, or nil
func (d *Document) Section(name string) *Section {
	for _, s := range d.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// FormatFloat renders a real the way readers expect: plain decimal notation
// that always carries a decimal point.
func FormatFloat(v float64) string {
	if v == 0 {
		// folds -0 into 0
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return s
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
