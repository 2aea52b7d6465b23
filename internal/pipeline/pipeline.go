// Package pipeline runs the document source over every PDF in a directory
// and gathers the records of the whole run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulrahman2018/PDF-DataExtractor/internal/fields"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/pdf"
)

// DocumentSource extracts the records of one document into acc
type DocumentSource interface {
	Process(ctx context.Context, path string, acc *fields.Accumulator) (pdf.Outcome, error)
}

// Stats summarizes one directory run
type Stats struct {
	Scanned   int `json:"scanned"`
	Matched   int `json:"matched"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	TextLayer int `json:"text_layer"`
	ImageScan int `json:"image_scan"`
}

// FileError records why a document was skipped
type FileError struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// Result is everything a run produced
type Result struct {
	Records  []fields.Record `json:"records"`
	Stats    Stats           `json:"stats"`
	Failures []FileError     `json:"failures,omitempty"`
}

// Pipeline walks directories of PDFs. It holds no per-run state, so one
// Pipeline may serve several runs; each run gets its own accumulator.
type Pipeline struct {
	source DocumentSource
	logger *slog.Logger
}

// New returns a pipeline reading documents through source
func New(source DocumentSource, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{source: source, logger: logger}
}

// ProcessDirectory extracts records from every .pdf file directly inside dir.
//
// A document that fails is logged, counted and skipped. Records it produced
// before failing are kept. The only errors returned are an unreadable
// directory or a canceled context; a run in which every document failed
// still returns a nil error and an empty record list.
func (p *Pipeline) ProcessDirectory(ctx context.Context, dir string) (*Result, error) {
	entries, scanned, err := pdf.ScanPDFs(dir)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	acc := fields.NewAccumulator()
	result := &Result{}
	result.Stats.Matched = len(entries)
	result.Stats.Scanned = scanned

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Records = acc.Records()
			return result, err
		}

		p.processFile(ctx, entry.Path, acc, result)
	}

	result.Records = acc.Records()

	p.logger.Info("pipeline.done",
		"dir", dir,
		"files", result.Stats.Matched,
		"succeeded", result.Stats.Succeeded,
		"failed", result.Stats.Failed,
		"records", len(result.Records),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if result.Stats.Matched > 0 && result.Stats.Succeeded == 0 {
		p.logger.Warn("pipeline.all_failed", "dir", dir, "files", result.Stats.Matched)
	}
	return result, nil
}

// ProcessFiles runs the source over an explicit list of paths, in order
func (p *Pipeline) ProcessFiles(ctx context.Context, paths []string) (*Result, error) {
	acc := fields.NewAccumulator()
	result := &Result{}
	result.Stats.Scanned = len(paths)
	result.Stats.Matched = len(paths)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			result.Records = acc.Records()
			return result, err
		}
		p.processFile(ctx, path, acc, result)
	}

	result.Records = acc.Records()
	return result, nil
}

func (p *Pipeline) processFile(ctx context.Context, path string, acc *fields.Accumulator, result *Result) {
	out, err := p.source.Process(ctx, path, acc)

	switch out.Branch {
	case pdf.StateTextLayer:
		result.Stats.TextLayer++
	case pdf.StateImageScan:
		result.Stats.ImageScan++
	}

	if err != nil {
		result.Stats.Failed++
		result.Failures = append(result.Failures, FileError{Path: path, Err: err.Error()})
		p.logger.Error("pipeline.document_failed",
			"path", path,
			"mode", out.Branch.String(),
			"pages_done", out.PagesProcessed,
			"records_kept", out.Records,
			"err", err,
		)
		return
	}

	result.Stats.Succeeded++
	p.logger.Debug("pipeline.document_ok",
		"path", path,
		"mode", out.Branch.String(),
		"pages", out.Pages,
		"records", out.Records,
	)
}

// Summary renders a one line description of the run
func (r *Result) Summary() string {
	return fmt.Sprintf("%d records from %d/%d documents (%d failed, %d text, %d scanned)",
		len(r.Records), r.Stats.Succeeded, r.Stats.Matched, r.Stats.Failed, r.Stats.TextLayer, r.Stats.ImageScan)
}
