package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spherical/pdf2cad/internal/domain"
)

// maxSize is the size above which a large-file warning is reported
const maxSize = 100 * 1024 * 1024 // 100MB

// Validator provides input validation for PDF files
type Validator struct {
	log domain.Reporter
}

// NewValidator creates a new validator instance
func NewValidator(log domain.Reporter) *Validator {
	if log == nil {
		log = domain.NopReporter{}
	}
	return &Validator{log: log}
}

// ValidatePDFPath validates that a file path is valid and points to a PDF
func (v *Validator) ValidatePDFPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.ValidationError("file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ValidationError(fmt.Sprintf("file does not exist: %s", path), err)
		}
		return domain.ValidationError(fmt.Sprintf("cannot access file: %s", path), err)
	}

	if info.IsDir() {
		return domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" {
		return domain.ValidationError(fmt.Sprintf("file is not a PDF (has extension %s)", ext), nil)
	}

	if info.Size() > maxSize {
		v.log.Warn("PDF file is very large (%d MB), processing may take a while", info.Size()/(1024*1024))
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.ValidationError(fmt.Sprintf("cannot open file: %s", path), err)
	}
	file.Close()

	return nil
}

// ValidateOutputPath checks that the output directory exists and the
// extension names a known format.
func (v *Validator) ValidateOutputPath(path string) (domain.Format, error) {
	if strings.TrimSpace(path) == "" {
		return 0, domain.ValidationError("output path cannot be empty", nil)
	}

	format, err := domain.FormatFromPath(path)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return 0, domain.ValidationError(fmt.Sprintf("output directory does not exist: %s", dir), err)
	}
	if !info.IsDir() {
		return 0, domain.ValidationError(fmt.Sprintf("output parent is not a directory: %s", dir), nil)
	}

	return format, nil
}
