package cad

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spherical/pdf2cad/internal/domain"
	"github.com/spherical/pdf2cad/internal/dxf"
)

// Generator turns primitives and text into CAD files. Each call builds a
// fresh document with its own handle allocator, so a Generator may be shared
// across goroutines.
type Generator struct {
	opts Options
	log  domain.Reporter

	mu      sync.Mutex
	vectors []domain.VectorElement
	texts   []string
}

// NewGenerator creates a generator. A nil reporter discards diagnostics.
func NewGenerator(opts Options, reporter domain.Reporter) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = domain.NopReporter{}
	}
	return &Generator{opts: opts, log: reporter}, nil
}

// SetVectorElements stages vectors for a later GenerateFile call
func (g *Generator) SetVectorElements(vectors []domain.VectorElement) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.vectors = vectors
}

// SetTextElements stages text for a later GenerateFile call
func (g *Generator) SetTextElements(texts []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.texts = texts
}

// GenerateFile writes the staged elements to outputPath
func (g *Generator) GenerateFile(outputPath string, format domain.Format) (*Report, error) {
	g.mu.Lock()
	vectors, texts := g.vectors, g.texts
	g.mu.Unlock()
	return g.Generate(vectors, texts, outputPath, format)
}

// Build assembles and verifies a document without writing it
func (g *Generator) Build(vectors []domain.VectorElement, texts []string) (*dxf.Document, *Report, error) {
	return newBuilder(g.opts, g.log).build(vectors, texts)
}

// WriteTo assembles a document and encodes it to w
func (g *Generator) WriteTo(w io.Writer, vectors []domain.VectorElement, texts []string, format domain.Format) (*Report, error) {
	if format != domain.FormatDXF {
		g.log.Error("Unsupported output format: %s", format)
		return nil, domain.UnsupportedFormatError(format)
	}

	doc, report, err := g.Build(vectors, texts)
	if err != nil {
		return nil, err
	}

	enc := dxf.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	report.Bytes = enc.Written()
	return report, nil
}

// Generate writes a drawing to outputPath. The file is written to a
// temporary sibling and renamed into place, so a failed call never leaves a
// partial drawing at outputPath.
func (g *Generator) Generate(vectors []domain.VectorElement, texts []string, outputPath string, format domain.Format) (*Report, error) {
	if format != domain.FormatDXF {
		g.log.Error("Unsupported output format: %s", format)
		return nil, domain.UnsupportedFormatError(format)
	}

	g.log.Info("Generating CAD file with %d vectors and %d text elements", len(vectors), len(texts))

	doc, report, err := g.Build(vectors, texts)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return nil, domain.IOError(fmt.Sprintf("failed to create output in %s", dir), err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return nil, domain.IOError("failed to set output permissions", err)
	}

	enc := dxf.NewEncoder(tmp)
	if err := enc.Encode(doc); err != nil {
		g.log.Error("Failed to write %s: %v", outputPath, err)
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, domain.IOError("failed to close output file", err)
	}
	if err := os.Rename(tmpName, outputPath); err != nil {
		return nil, domain.IOError(fmt.Sprintf("failed to move output to %s", outputPath), err)
	}
	committed = true

	report.Bytes = enc.Written()
	g.log.Info("Successfully generated CAD file: %s (%s)", outputPath, report)
	return report, nil
}
