package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spherical/pdf2cad/internal/cad"
	"github.com/spherical/pdf2cad/internal/domain"
)

// Generator is the assembler half of a conversion
type Generator interface {
	Generate(vectors []domain.VectorElement, texts []string, outputPath string, format domain.Format) (*cad.Report, error)
}

// Service orchestrates the conversion of one source document into a drawing
type Service struct {
	source    domain.Source
	generator Generator
	logger    domain.Reporter
}

// NewService creates a new conversion service
func NewService(source domain.Source, generator Generator, logger domain.Reporter) *Service {
	if logger == nil {
		logger = domain.NopReporter{}
	}
	return &Service{
		source:    source,
		generator: generator,
		logger:    logger,
	}
}

// Process handles the complete workflow: load, extract, then generate.
// Events are delivered to eventCh when it is non-nil; a full channel drops
// events rather than blocking the conversion.
func (s *Service) Process(ctx context.Context, pdfPath, outputPath string, format domain.Format, eventCh chan<- domain.StreamEvent) (*cad.Report, error) {
	startTime := time.Now()

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventStart,
		Payload:   fmt.Sprintf("Starting conversion of %s", pdfPath),
		Timestamp: time.Now(),
	})

	if format != domain.FormatDXF {
		err := domain.UnsupportedFormatError(format)
		s.emitError(eventCh, err)
		return nil, err
	}

	s.logger.Info("Loading source document: %s", pdfPath)
	if err := s.source.Load(ctx, pdfPath); err != nil {
		s.emitError(eventCh, err)
		return nil, err
	}
	defer func() {
		if err := s.source.Close(); err != nil {
			s.logger.Warn("Failed to close %s: %v", pdfPath, err)
		}
	}()

	vectors, err := s.source.ExtractVectors(ctx)
	if err != nil {
		err = wrapExtraction("extract vectors", err)
		s.emitError(eventCh, err)
		return nil, err
	}

	texts, err := s.source.ExtractText(ctx)
	if err != nil {
		err = wrapExtraction("extract text", err)
		s.emitError(eventCh, err)
		return nil, err
	}

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventExtracted,
		Payload:   domain.ExtractionStats{Vectors: len(vectors), Texts: len(texts)},
		Timestamp: time.Now(),
	})

	if err := ctx.Err(); err != nil {
		s.emitError(eventCh, err)
		return nil, err
	}

	report, err := s.generator.Generate(vectors, texts, outputPath, format)
	if err != nil {
		s.logger.Error("Failed to generate %s: %v", outputPath, err)
		s.emitError(eventCh, err)
		return nil, err
	}

	if report.Skipped > 0 {
		s.emitEvent(eventCh, domain.StreamEvent{
			Type:      domain.EventSkipped,
			Payload:   domain.SkipStats{Unsupported: report.SkippedByKind, Malformed: report.Malformed},
			Timestamp: time.Now(),
		})
	}

	duration := time.Since(startTime)
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventComplete,
		Payload:   report,
		Timestamp: time.Now(),
	})

	s.logger.Info("Conversion complete: %s in %v", report, duration)
	return report, nil
}

// wrapExtraction keeps typed errors intact and classifies the rest
func wrapExtraction(op string, err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.ExtractionError(op, err)
}

// emitEvent safely emits an event to the channel
func (s *Service) emitEvent(eventCh chan<- domain.StreamEvent, event domain.StreamEvent) {
	if eventCh != nil {
		select {
		case eventCh <- event:
		default:
			s.logger.Warn("Event channel full, dropping event: %s", event.Type)
		}
	}
}

// emitError emits an error event
func (s *Service) emitError(eventCh chan<- domain.StreamEvent, err error) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventError,
		Payload:   err.Error(),
		Timestamp: time.Now(),
	})
}
