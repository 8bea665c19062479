// Package pdf reads source documents with go-fitz and hands their content
// to the assembler as primitives and text.
package pdf

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical/pdf2cad/internal/domain"
)

// FrameThickness is the stroke width, in points, given to page frames
const FrameThickness = 1.0

// Processor implements domain.Source using go-fitz
type Processor struct {
	log domain.Reporter

	mu  sync.Mutex
	doc *fitz.Document
}

// NewProcessor creates a new PDF processor instance
func NewProcessor(log domain.Reporter) *Processor {
	if log == nil {
		log = domain.NopReporter{}
	}
	return &Processor{log: log}
}

// Load opens the PDF at path, replacing any previously loaded document
func (p *Processor) Load(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := NewValidator(p.log).ValidatePDFPath(path); err != nil {
		return err
	}

	p.log.Info("Loading PDF: %s", path)
	doc, err := fitz.New(path)
	if err != nil {
		p.log.Error("Failed to load PDF: %s", path)
		return domain.ExtractionError("failed to open PDF", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc != nil {
		p.doc.Close()
	}
	p.doc = doc

	pages := doc.NumPage()
	p.log.Info("Successfully loaded PDF with %d pages", pages)
	if pages == 0 {
		p.log.Warn("PDF has no pages")
	}
	return nil
}

// ExtractVectors returns the frame of every page as four lines. Pages are
// laid out left to right in reading order.
func (p *Processor) ExtractVectors(ctx context.Context) ([]domain.VectorElement, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		p.log.Error("Cannot extract vectors: No PDF loaded")
		return nil, domain.ErrNoDocument
	}

	pages := p.doc.NumPage()
	p.log.Info("Processing %d pages for vector elements", pages)

	vectors := make([]domain.VectorElement, 0, 4*pages)
	offset := 0.0
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bounds, err := p.doc.Bound(i)
		if err != nil {
			p.log.Warn("Failed to read bounds of page %d: %v", i+1, err)
			continue
		}
		vectors = append(vectors, FrameLines(bounds, offset)...)
		offset += float64(bounds.Dx())
		p.log.Debug("Added page frame for page %d", i+1)
	}

	p.log.Info("Vector extraction complete. Found %d vector elements", len(vectors))
	return vectors, nil
}

// ExtractText returns the text of every page that has any
func (p *Processor) ExtractText(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		p.log.Error("Cannot extract text: No PDF loaded")
		return nil, domain.ErrNoDocument
	}

	pages := p.doc.NumPage()
	p.log.Info("Processing %d pages for text", pages)

	var texts []string
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := p.doc.Text(i)
		if err != nil {
			return nil, domain.ExtractionError(fmt.Sprintf("failed to extract text from page %d", i+1), err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			p.log.Debug("No text found on page %d", i+1)
			continue
		}
		p.log.Debug("Found text on page %d (%d bytes)", i+1, len(text))
		texts = append(texts, text)
	}

	p.log.Info("Text extraction complete. Found %d text elements", len(texts))
	return texts, nil
}

// Close releases the loaded document
func (p *Processor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		return nil
	}
	err := p.doc.Close()
	p.doc = nil
	if err != nil {
		return domain.IOError("failed to close PDF", err)
	}
	return nil
}

// FrameLines returns the four edges of a page rectangle shifted right by
// offset, counter-clockwise from the bottom edge.
func FrameLines(bounds image.Rectangle, offset float64) []domain.VectorElement {
	x0 := float64(bounds.Min.X) + offset
	y0 := float64(bounds.Min.Y)
	x1 := float64(bounds.Max.X) + offset
	y1 := float64(bounds.Max.Y)
	return []domain.VectorElement{
		domain.NewLine(x0, y0, x1, y0, FrameThickness),
		domain.NewLine(x1, y0, x1, y1, FrameThickness),
		domain.NewLine(x1, y1, x0, y1, FrameThickness),
		domain.NewLine(x0, y1, x0, y0, FrameThickness),
	}
}
