// Package converter is the public entry point for turning PDF documents into
// DXF drawings.
package converter

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spherical/pdf2cad/internal/cad"
	"github.com/spherical/pdf2cad/internal/config"
	"github.com/spherical/pdf2cad/internal/domain"
	"github.com/spherical/pdf2cad/internal/extract"
	"github.com/spherical/pdf2cad/internal/observability"
	"github.com/spherical/pdf2cad/internal/pdf"
)

// Re-export model types for the public API
type (
	StreamEvent   = domain.StreamEvent
	EventType     = domain.EventType
	VectorElement = domain.VectorElement
	Format        = domain.Format
	Report        = cad.Report
	Options       = cad.Options
)

// Event type constants
const (
	EventStart     = domain.EventStart
	EventExtracted = domain.EventExtracted
	EventSkipped   = domain.EventSkipped
	EventError     = domain.EventError
	EventComplete  = domain.EventComplete
)

// Output formats
const (
	FormatDXF = domain.FormatDXF
	FormatDWG = domain.FormatDWG
)

// Job names one input document and where its drawing goes
type Job struct {
	Input  string
	Output string
}

// Result is the outcome of one Job. RunID matches the run_id field on the
// job's log entries.
type Result struct {
	Job    Job
	RunID  string
	Report *Report
	Err    error
}

// Client is the main entry point for the converter library
type Client struct {
	generator *cad.Generator
	logger    *observability.Logger
	maxJobs   int
	format    Format

	// newSource builds the extraction collaborator for one conversion
	newSource func(domain.Reporter) domain.Source
}

// NewClient creates a client from loaded configuration. A nil logger
// discards diagnostics.
func NewClient(cfg *config.Config, logger *observability.Logger) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.Nop()
	}

	generator, err := cad.NewGenerator(cfg.DrawingOptions(), logger.WithOperation("generate").Reporter())
	if err != nil {
		return nil, err
	}

	return &Client{
		generator: generator,
		logger:    logger,
		maxJobs:   cfg.Batch.MaxConcurrentJobs,
		format:    cfg.OutputFormat(),
		newSource: func(log domain.Reporter) domain.Source {
			return pdf.NewProcessor(log)
		},
	}, nil
}

// Format returns the configured default output format
func (c *Client) Format() Format {
	return c.format
}

// OutputPath derives the drawing path for a PDF in the configured format
func (c *Client) OutputPath(pdfPath, dir string) string {
	return OutputPath(pdfPath, dir, c.format)
}

// Convert converts one PDF into a drawing at outputPath. The format is
// taken from the output extension.
func (c *Client) Convert(ctx context.Context, pdfPath, outputPath string) (*Report, error) {
	return c.convert(ctx, pdfPath, outputPath, nil)
}

// Process converts one PDF and streams progress events. The returned
// channel is closed when the conversion finishes.
func (c *Client) Process(ctx context.Context, pdfPath, outputPath string) (<-chan StreamEvent, error) {
	if _, err := pdf.NewValidator(nil).ValidateOutputPath(outputPath); err != nil {
		return nil, err
	}

	eventCh := make(chan StreamEvent, 100)
	go func() {
		defer close(eventCh)
		_, _ = c.convert(ctx, pdfPath, outputPath, eventCh)
	}()
	return eventCh, nil
}

// ConvertAll converts jobs concurrently, bounded by the configured job
// limit. Every job is attempted; results are returned in job order and the
// error summarises any failures. onDone, if non-nil, is called once per
// finished job from the worker goroutine.
func (c *Client) ConvertAll(ctx context.Context, jobs []Job, onDone func(Result)) ([]Result, error) {
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxJobs)
	for i, job := range jobs {
		g.Go(func() error {
			runID := uuid.NewString()
			report, err := c.Convert(observability.ContextWithRunID(gctx, runID), job.Input, job.Output)
			results[i] = Result{Job: job, RunID: runID, Report: report, Err: err}
			if onDone != nil {
				onDone(results[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d conversions failed", failed, len(jobs))
	}
	return results, nil
}

// Generate writes caller-supplied primitives and text to outputPath
func (c *Client) Generate(vectors []VectorElement, texts []string, outputPath string) (*Report, error) {
	format, err := domain.FormatFromPath(outputPath)
	if err != nil {
		return nil, err
	}
	return c.generator.Generate(vectors, texts, outputPath, format)
}

// WriteDXF encodes caller-supplied primitives and text to w
func (c *Client) WriteDXF(w io.Writer, vectors []VectorElement, texts []string) (*Report, error) {
	return c.generator.WriteTo(w, vectors, texts, domain.FormatDXF)
}

func (c *Client) convert(ctx context.Context, pdfPath, outputPath string, eventCh chan<- StreamEvent) (*Report, error) {
	format, err := pdf.NewValidator(nil).ValidateOutputPath(outputPath)
	if err != nil {
		return nil, err
	}

	if observability.RunIDFromContext(ctx) == "" {
		ctx = observability.ContextWithRunID(ctx, uuid.NewString())
	}
	log := c.logger.WithContext(ctx).WithFile(pdfPath)
	service := extract.NewService(c.newSource(log.Reporter()), c.generator, log.WithOperation("convert").Reporter())

	report, err := service.Process(ctx, pdfPath, outputPath, format, eventCh)
	if err != nil {
		log.Error().Err(err).Str("output", outputPath).Msg("conversion failed")
		return nil, err
	}
	log.Info().
		Str("output", outputPath).
		Int("lines", report.Lines).
		Int("texts", report.Texts).
		Int("skipped", report.Skipped).
		Int64("bytes", report.Bytes).
		Msg("conversion complete")
	return report, nil
}

// OutputPath derives the drawing path for a PDF: the input's base name with
// the format's extension, placed in dir or next to the input when dir is
// empty.
func OutputPath(pdfPath, dir string, format Format) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath)) + format.Extension()
	if dir == "" {
		dir = filepath.Dir(pdfPath)
	}
	return filepath.Join(dir, base)
}
