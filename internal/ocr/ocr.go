// Package ocr prepares rendered page images and runs them through Tesseract.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strings"
)

// Backend names accepted in Config.Backend
const (
	BackendGosseract = "gosseract"
	BackendCLI       = "cli"
)

// Config holds the fixed recognizer settings
type Config struct {
	Backend     string  // gosseract | cli
	Languages   string  // plus-separated tesseract language codes
	PSM         int     // page segmentation mode, 6 = single uniform block
	OEM         int     // engine mode, 1 = LSTM
	Contrast    float64 // contrast multiplier applied after grayscale
	TessdataDir string
	Tesseract   string // binary used by the cli backend
}

// DefaultConfig returns the settings tuned for mixed print and handwriting
func DefaultConfig() Config {
	return Config{
		Backend:   BackendGosseract,
		Languages: "eng+fra+deu+spa+ita",
		PSM:       6,
		OEM:       1,
		Contrast:  2.0,
		Tesseract: "tesseract",
	}
}

// LanguageList splits Languages into individual codes
func (c Config) LanguageList() []string {
	var langs []string
	for _, l := range strings.Split(c.Languages, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

// Backend turns an encoded PNG into text
type Backend interface {
	RecognizePNG(ctx context.Context, data []byte) (string, error)
	Close() error
}

// Engine pre-processes page images and hands them to a backend
type Engine struct {
	cfg     Config
	backend Backend
	logger  *slog.Logger
}

// NewEngine wraps an existing backend
func NewEngine(cfg Config, backend Backend, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Contrast <= 0 {
		cfg.Contrast = DefaultConfig().Contrast
	}
	return &Engine{cfg: cfg, backend: backend, logger: logger}
}

// Recognize enhances img and returns the recognized text
func (e *Engine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	enhanced := Enhance(img, e.cfg.Contrast)

	var buf bytes.Buffer
	if err := png.Encode(&buf, enhanced); err != nil {
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}

	text, err := e.backend.RecognizePNG(ctx, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("ocr failed: %w", err)
	}

	e.logger.Debug("ocr.page",
		"width", enhanced.Bounds().Dx(),
		"height", enhanced.Bounds().Dy(),
		"chars", len(text),
	)
	return text, nil
}

// Close releases the backend
func (e *Engine) Close() error {
	return e.backend.Close()
}
