package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/abdulrahman2018/PDF-DataExtractor/internal/config"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/export"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/fields"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/httpapi"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/mcp"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/ocr"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/ocr/tessapi"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/pdf"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/pipeline"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/session"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

const shutdownTimeout = 10 * time.Second

// app holds the components shared by every mode
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	engine     *ocr.Engine
	classifier *fields.Classifier
	pipeline   *pipeline.Pipeline
	exporter   *export.Exporter
}

func main() {
	cfg, err := config.LoadFromFlags()
	switch {
	case errors.Is(err, config.ErrVersionRequested):
		printVersion()
		return
	case errors.Is(err, pflag.ErrHelp):
		return
	case err != nil:
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.Error("fatal", "mode", cfg.Mode, "err", err)
		stop()
		os.Exit(1)
	}
}

// newLogger picks the handler for the mode. Logs always go to w so that
// stdout stays free for the MCP stream and the batch summary.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsServerMode() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	if cfg.IsDebug() {
		logger.Debug("config", "value", cfg.String())
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.engine.Close(); err != nil {
			logger.Warn("ocr.close_failed", "err", err)
		}
	}()

	switch {
	case cfg.IsServerMode():
		return a.serve(ctx)
	case cfg.IsStdioMode():
		return a.stdio(ctx)
	default:
		return a.batch(ctx, stdout)
	}
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	engine, err := newOCREngine(cfg.OCR, logger)
	if err != nil {
		return nil, err
	}

	classifier := fields.NewClassifier(fields.Options{FallThrough: cfg.FallThrough, SplitLines: cfg.SplitLines})
	source := pdf.NewSource(pdf.SourceConfig{
		OCR:           engine,
		Classifier:    classifier,
		TextThreshold: cfg.TextThreshold,
		DPI:           cfg.DPI,
		Logger:        logger,
	})

	return &app{
		cfg:        cfg,
		logger:     logger,
		engine:     engine,
		classifier: classifier,
		pipeline:   pipeline.New(source, logger),
		exporter:   export.New(logger),
	}, nil
}

// newTessBackend opens the libtesseract backend
var newTessBackend = func(cfg ocr.Config) (ocr.Backend, error) {
	return tessapi.New(cfg)
}

// newOCREngine builds the configured backend and wraps it in an engine
func newOCREngine(cfg ocr.Config, logger *slog.Logger) (*ocr.Engine, error) {
	backend, err := selectBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	return ocr.NewEngine(cfg, backend, logger), nil
}

// selectBackend picks the OCR backend. When libtesseract cannot be
// initialised the tesseract binary is used instead.
func selectBackend(cfg ocr.Config, logger *slog.Logger) (ocr.Backend, error) {
	switch cfg.Backend {
	case ocr.BackendGosseract:
		b, err := newTessBackend(cfg)
		if err != nil {
			logger.Warn("ocr.gosseract_unavailable", "err", err, "fallback", ocr.BackendCLI)
			return ocr.NewCLIBackend(cfg, ocr.ExecRunner{Logger: logger}), nil
		}
		return b, nil
	case ocr.BackendCLI:
		return ocr.NewCLIBackend(cfg, ocr.ExecRunner{Logger: logger}), nil
	default:
		return nil, fmt.Errorf("unknown OCR backend: %s", cfg.Backend)
	}
}

// batch processes the input directory once and writes the workbook
func (a *app) batch(ctx context.Context, stdout io.Writer) error {
	result, err := a.pipeline.ProcessDirectory(ctx, a.cfg.InputDir)
	if err != nil {
		return err
	}

	summary, err := a.exporter.WriteFile(a.cfg.OutputFile, result.Records)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, formatSummary(result, summary))
	return nil
}

func formatSummary(result *pipeline.Result, summary *export.Summary) string {
	line := result.Summary()
	if !summary.Written {
		return line + "; no data extracted, nothing written"
	}
	return fmt.Sprintf("%s; wrote %s (%s)", line, summary.Path, humanize.Bytes(uint64(summary.Bytes)))
}

// serve runs the upload API until ctx is canceled
func (a *app) serve(ctx context.Context) error {
	store, err := session.NewStore(a.cfg.UploadDir, a.cfg.OutputDir, a.logger)
	if err != nil {
		return err
	}

	api := httpapi.New(a.pipeline, a.exporter, store, httpapi.Options{
		MaxUpload:    a.cfg.MaxUpload,
		KeepSessions: a.cfg.KeepSessions,
		Logger:       a.logger,
	})

	srv := &http.Server{
		Addr:              a.cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http.listen", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		a.logger.Info("http.shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

// stdio serves the MCP tools on stdin/stdout
func (a *app) stdio(ctx context.Context) error {
	server, err := mcp.NewServer(a.cfg, mcp.Deps{
		Pipeline:   a.pipeline,
		Classifier: a.classifier,
		Validator:  pdf.NewValidator(a.cfg.MaxFileSize),
		Exporter:   a.exporter,
		Logger:     a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Run(ctx)
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF Data Extractor\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
