package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// Helper function to clear environment variables read by Load
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PDFX_MODE", "PDFX_DIR", "PDFX_OUT", "PDFX_PORT", "PDFX_LOG_LEVEL",
		"PDFX_OCR_DPI", "PDFX_OCR_ENGINE", "PDFX_FALL_THROUGH", "PDFX_SPLIT_LINES", "PDFX_TEXT_THRESHOLD",
	} {
		if val, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, val) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnvVars(t)
	dir := t.TempDir()

	cfg, err := Load([]string{"--dir", dir})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Mode != ModeRun {
		t.Errorf("Load() Mode = %v, want %v", cfg.Mode, ModeRun)
	}
	if cfg.InputDir != dir {
		t.Errorf("Load() InputDir = %v, want %v", cfg.InputDir, dir)
	}
	if cfg.DPI != DefaultDPI {
		t.Errorf("Load() DPI = %v, want %v", cfg.DPI, DefaultDPI)
	}
	if cfg.OCR.Backend != "gosseract" {
		t.Errorf("Load() OCR.Backend = %v", cfg.OCR.Backend)
	}
	if !filepath.IsAbs(cfg.OutputFile) {
		t.Errorf("Load() OutputFile should be absolute, got %v", cfg.OutputFile)
	}
}

func TestLoad_Flags(t *testing.T) {
	clearEnvVars(t)
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "result.xlsx")

	cfg, err := Load([]string{
		"--dir=" + dir,
		"--out=" + out,
		"--ocr-engine=cli",
		"--ocr-dpi=150",
		"--ocr-languages=eng",
		"--text-threshold=40",
		"--fall-through",
		"--split-lines",
		"--log-level=DEBUG",
	})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.OutputFile != out {
		t.Errorf("OutputFile = %v, want %v", cfg.OutputFile, out)
	}
	if cfg.OCR.Backend != "cli" {
		t.Errorf("OCR.Backend = %v, want cli", cfg.OCR.Backend)
	}
	if cfg.DPI != 150 {
		t.Errorf("DPI = %v, want 150", cfg.DPI)
	}
	if cfg.TextThreshold != 40 {
		t.Errorf("TextThreshold = %v, want 40", cfg.TextThreshold)
	}
	if !cfg.FallThrough {
		t.Error("FallThrough = false, want true")
	}
	if !cfg.SplitLines {
		t.Error("SplitLines = false, want true")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	clearEnvVars(t)
	dir := t.TempDir()
	t.Setenv("PDFX_DIR", dir)
	t.Setenv("PDFX_OCR_DPI", "200")
	t.Setenv("PDFX_LOG_LEVEL", "warn")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.InputDir != dir {
		t.Errorf("InputDir = %v, want %v", cfg.InputDir, dir)
	}
	if cfg.DPI != 200 {
		t.Errorf("DPI = %v, want 200", cfg.DPI)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %v, want warn", cfg.LogLevel)
	}
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("PDFX_DIR", t.TempDir())
	t.Setenv("PDFX_OCR_DPI", "200")

	cfg, err := Load([]string{"--ocr-dpi=72"})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.DPI != 72 {
		t.Errorf("DPI = %v, want flag value 72", cfg.DPI)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnvVars(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{name: "mode", args: []string{"--dir", dir, "--mode=batch"}},
		{name: "port", args: []string{"--mode=server", "--port=0", "--upload-dir", dir, "--output-dir", dir}},
		{name: "log level", args: []string{"--dir", dir, "--log-level=verbose"}},
		{name: "engine", args: []string{"--dir", dir, "--ocr-engine=paddle"}},
		{name: "unknown flag", args: []string{"--dir", dir, "--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.args); err == nil {
				t.Errorf("Load(%v) expected error", tt.args)
			}
		})
	}
}

func TestLoad_VersionFlag(t *testing.T) {
	for _, arg := range []string{"--version", "-version", "-v"} {
		_, err := Load([]string{arg})
		if !errors.Is(err, ErrVersionRequested) {
			t.Errorf("Load(%s) error = %v, want ErrVersionRequested", arg, err)
		}
	}
}
