package pdf

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/abdulrahman2018/PDF-DataExtractor/internal/fields"
)

// Defaults for SourceConfig
const (
	DefaultTextThreshold = 100
	DefaultDPI           = 300
)

// Recognizer turns a rendered page into text
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// PageClassifier turns page text into records
type PageClassifier interface {
	ClassifyText(text string, acc *fields.Accumulator) int
}

// SourceConfig wires the collaborators of a Source
type SourceConfig struct {
	Text       TextOpener
	Raster     Rasterizer
	OCR        Recognizer
	Classifier PageClassifier

	// TextThreshold is the number of characters the trimmed first page must
	// exceed for the text layer to be trusted.
	TextThreshold int
	DPI           float64

	Logger *slog.Logger
}

func (c *SourceConfig) defaults() {
	if c.Text == nil {
		c.Text = LedongthucOpener{}
	}
	if c.Raster == nil {
		c.Raster = FitzRasterizer{}
	}
	if c.Classifier == nil {
		c.Classifier = fields.NewClassifier(fields.Options{})
	}
	if c.TextThreshold <= 0 {
		c.TextThreshold = DefaultTextThreshold
	}
	if c.DPI <= 0 {
		c.DPI = DefaultDPI
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Source decides per document whether to read the text layer or OCR
// rendered pages, and feeds the resulting text to the classifier
type Source struct {
	cfg SourceConfig
}

// NewSource returns a Source with defaults applied to cfg
func NewSource(cfg SourceConfig) *Source {
	cfg.defaults()
	return &Source{cfg: cfg}
}

// Classify reports which branch a document with the given first page text
// would take
func (s *Source) Classify(firstPage string) State {
	if utf8.RuneCountInString(strings.TrimSpace(firstPage)) > s.cfg.TextThreshold {
		return StateTextLayer
	}
	return StateImageScan
}

// Process extracts records from the PDF at path into acc.
//
// Records are appended one page at a time. When a page fails the document
// ends in StateFailed, the error is returned and the records of earlier
// pages stay in acc.
func (s *Source) Process(ctx context.Context, path string, acc *fields.Accumulator) (out Outcome, err error) {
	out = Outcome{Path: path, Branch: StateUnclassified, Final: StateFailed}
	start := acc.Len()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrDecoderPanicked, r)
		}
		out.Records = acc.Len() - start
		if err == nil {
			out.Final = StateDone
		}
	}()

	doc, err := s.cfg.Text.OpenText(path)
	if err != nil {
		return out, err
	}
	defer doc.Close()

	out.Pages = doc.NumPage()
	if out.Pages < 1 {
		return out, ErrNoPages
	}

	first, err := doc.PageText(1)
	if err != nil {
		return out, fmt.Errorf("first page: %w", err)
	}

	out.Branch = s.Classify(first)
	s.cfg.Logger.Debug("pdf.classified", "path", path, "mode", out.Branch.String(), "pages", out.Pages)

	if out.Branch == StateTextLayer {
		err = s.processTextLayer(ctx, doc, first, acc, &out)
		return out, err
	}

	err = s.processImageScan(ctx, path, acc, &out)
	return out, err
}

func (s *Source) processTextLayer(ctx context.Context, doc TextDocument, first string, acc *fields.Accumulator, out *Outcome) error {
	for n := 1; n <= out.Pages; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		text := first
		if n > 1 {
			var err error
			if text, err = doc.PageText(n); err != nil {
				return fmt.Errorf("page %d: %w", n, err)
			}
		}

		s.classifyPage(text, acc)
		out.PagesProcessed++
	}
	return nil
}

func (s *Source) processImageScan(ctx context.Context, path string, acc *fields.Accumulator, out *Outcome) error {
	if s.cfg.OCR == nil {
		return ErrNoRecognizer
	}

	doc, err := s.cfg.Raster.OpenRaster(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	out.Pages = doc.NumPage()
	for n := 1; n <= out.Pages; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		img, err := doc.RenderPage(n, s.cfg.DPI)
		if err != nil {
			return fmt.Errorf("page %d: %w", n, err)
		}

		text, err := s.cfg.OCR.Recognize(ctx, img)
		if err != nil {
			return fmt.Errorf("page %d: %w", n, err)
		}

		s.classifyPage(text, acc)
		out.PagesProcessed++
	}
	return nil
}

// classifyPage collects a page's records separately so a page contributes
// all of its records or none of them
func (s *Source) classifyPage(text string, acc *fields.Accumulator) {
	page := fields.NewAccumulator()
	s.cfg.Classifier.ClassifyText(text, page)
	acc.Append(page.Records()...)
}
