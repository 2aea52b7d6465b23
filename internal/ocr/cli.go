package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// CLIBackend shells out to the tesseract binary
type CLIBackend struct {
	cfg    Config
	runner Runner
}

// NewCLIBackend returns a backend that invokes cfg.Tesseract through runner
func NewCLIBackend(cfg Config, runner Runner) *CLIBackend {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	return &CLIBackend{cfg: cfg, runner: runner}
}

// Args builds the tesseract argument list for an input image
func (b *CLIBackend) Args(input string) []string {
	args := []string{input, "stdout"}
	if b.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(b.cfg.OEM))
	}
	if b.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(b.cfg.PSM))
	}
	if b.cfg.Languages != "" {
		args = append(args, "-l", b.cfg.Languages)
	}
	if b.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", b.cfg.TessdataDir)
	}
	return args
}

// RecognizePNG writes data to a scratch file and runs tesseract on it
func (b *CLIBackend) RecognizePNG(ctx context.Context, data []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "pdfx-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	input := filepath.Join(tmpDir, "page.png")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write page image: %w", err)
	}

	out, errb, err := b.runner.Run(ctx, b.cfg.Tesseract, b.Args(input)...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// Close is a no-op; every call starts its own process
func (b *CLIBackend) Close() error { return nil }
