package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Validator checks that files are PDFs the pipeline can open
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator rejecting files larger than maxFileSize
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// Validate inspects path and reports its structure. A file that fails
// validation yields Valid=false and a message, not an error.
func (v *Validator) Validate(path string) *ValidationResult {
	result := &ValidationResult{Path: path}

	info, err := v.statFile(path)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	result.Size = info.Size()

	if err := v.ValidateFileInfo(path, info); err != nil {
		result.Message = err.Error()
		return result
	}

	if err := v.readStructure(path, result); err != nil {
		result.Message = err.Error()
		return result
	}

	result.Valid = true
	return result
}

// IsValidPDF performs the full check and reports only the verdict
func (v *Validator) IsValidPDF(path string) bool {
	return v.Validate(path).Valid
}

// ValidateFileInfo performs the cheap checks that need no file access
func (v *Validator) ValidateFileInfo(path string, info os.FileInfo) error {
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	if !IsPDFName(path) {
		return fmt.Errorf("%w: %s", ErrNotPDF, path)
	}

	if info.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}

	if v.maxFileSize > 0 && info.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			info.Size(), v.maxFileSize)
	}

	return nil
}

func (v *Validator) statFile(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	return info, nil
}

// readStructure parses the document with pdfcpu in relaxed mode, which
// tolerates the minor defects common in scanner output
func (v *Validator) readStructure(path string, result *ValidationResult) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("failed to determine page count: %w", err)
	}

	result.Pages = ctx.PageCount
	if ctx.HeaderVersion != nil {
		result.Version = ctx.HeaderVersion.String()
	}
	result.Encrypted = ctx.Encrypt != nil
	return nil
}

// IsPDFName reports whether name has a .pdf extension, ignoring case
func IsPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
