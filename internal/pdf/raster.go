package pdf

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// RasterDocument renders pages of an open PDF to images. Pages are numbered
// from 1.
type RasterDocument interface {
	NumPage() int
	RenderPage(page int, dpi float64) (image.Image, error)
	Close() error
}

// Rasterizer opens a PDF for rendering
type Rasterizer interface {
	OpenRaster(path string) (RasterDocument, error)
}

// FitzRasterizer renders pages with MuPDF through github.com/gen2brain/go-fitz
type FitzRasterizer struct{}

// OpenRaster opens path with MuPDF
func (FitzRasterizer) OpenRaster(path string) (RasterDocument, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for rendering: %w", err)
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) NumPage() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) RenderPage(n int, dpi float64) (image.Image, error) {
	if n < 1 || n > d.doc.NumPage() {
		return nil, fmt.Errorf("%w: page %d out of range", ErrUnreadablePage, n)
	}
	// go-fitz counts pages from zero
	img, err := d.doc.ImageDPI(n-1, dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", n, err)
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
