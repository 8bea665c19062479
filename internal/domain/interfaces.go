package domain

import "context"

// Source defines the extraction collaborator that feeds the assembler
type Source interface {
	// Load opens the source document
	Load(ctx context.Context, path string) error

	// ExtractVectors returns the document's vector primitives in order
	ExtractVectors(ctx context.Context) ([]VectorElement, error)

	// ExtractText returns the document's text blocks in order
	ExtractText(ctx context.Context) ([]string, error)

	// Close releases the loaded document
	Close() error
}

// Reporter receives diagnostics from the assembler
type Reporter interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// NopReporter discards everything
type NopReporter struct{}

func (NopReporter) Debug(string, ...interface{}) {}
func (NopReporter) Info(string, ...interface{})  {}
func (NopReporter) Warn(string, ...interface{})  {}
func (NopReporter) Error(string, ...interface{}) {}
