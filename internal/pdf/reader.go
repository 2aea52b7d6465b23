package pdf

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// TextDocument exposes the embedded text layer of an open PDF. Pages are
// numbered from 1.
type TextDocument interface {
	NumPage() int
	PageText(page int) (string, error)
	Close() error
}

// TextOpener opens a PDF for text-layer reading
type TextOpener interface {
	OpenText(path string) (TextDocument, error)
}

// LedongthucOpener reads text layers with github.com/ledongthuc/pdf
type LedongthucOpener struct{}

// OpenText opens path and parses its cross-reference table
func (LedongthucOpener) OpenText(path string) (TextDocument, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &ledongthucDocument{file: f, reader: r}, nil
}

type ledongthucDocument struct {
	file   *os.File
	reader *pdf.Reader
}

func (d *ledongthucDocument) NumPage() int {
	return d.reader.NumPage()
}

func (d *ledongthucDocument) PageText(n int) (string, error) {
	if n < 1 || n > d.reader.NumPage() {
		return "", fmt.Errorf("%w: page %d out of range", ErrUnreadablePage, n)
	}

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", fmt.Errorf("%w: page %d is empty", ErrUnreadablePage, n)
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("%w: page %d: %v", ErrUnreadablePage, n, err)
	}
	return text, nil
}

func (d *ledongthucDocument) Close() error {
	return d.file.Close()
}
