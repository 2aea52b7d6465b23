// Package tessapi binds the OCR engine to the Tesseract C API via gosseract.
// It lives apart from package ocr so that the pure-Go parts build without
// libtesseract.
package tessapi

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/abdulrahman2018/PDF-DataExtractor/internal/ocr"
)

// Backend recognizes text through the Tesseract C API. One client
// is reused for every page, guarded by a mutex.
type Backend struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a client configured from cfg. gosseract only loads the
// language data on the first recognition, so New runs one over a blank
// image to surface a missing libtesseract setup here rather than on the
// first page.
func New(cfg ocr.Config) (*Backend, error) {
	client := gosseract.NewClient()

	if cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata dir: %w", err)
		}
	}
	if langs := cfg.LanguageList(); len(langs) > 0 {
		if err := client.SetLanguage(langs...); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set OCR languages: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PSM)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := warmUp(client); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialise tesseract: %w", err)
	}

	return &Backend{client: client}, nil
}

// warmUp forces the lazy Tesseract initialisation
func warmUp(client *gosseract.Client) error {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return err
	}
	_, err := client.Text()
	return err
}

// RecognizePNG runs OCR over an encoded PNG
func (b *Backend) RecognizePNG(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}
	return b.client.Text()
}

// Close frees the underlying Tesseract handle
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.client.Close()
}

var _ ocr.Backend = (*Backend)(nil)
