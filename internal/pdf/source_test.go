package pdf

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulrahman2018/PDF-DataExtractor/internal/fields"
)

type fakeTextDoc struct {
	pages  []string
	errAt  int
	panics bool
	closed bool
}

func (d *fakeTextDoc) NumPage() int { return len(d.pages) }

func (d *fakeTextDoc) PageText(n int) (string, error) {
	if d.panics {
		panic("malformed xref")
	}
	if n == d.errAt {
		return "", ErrUnreadablePage
	}
	return d.pages[n-1], nil
}

func (d *fakeTextDoc) Close() error {
	d.closed = true
	return nil
}

type fakeTextOpener struct {
	doc *fakeTextDoc
	err error
}

func (o fakeTextOpener) OpenText(string) (TextDocument, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

type fakeRasterDoc struct {
	pages    int
	errAt    int
	rendered []int
	dpi      float64
}

func (d *fakeRasterDoc) NumPage() int { return d.pages }

func (d *fakeRasterDoc) RenderPage(n int, dpi float64) (image.Image, error) {
	d.dpi = dpi
	if n == d.errAt {
		return nil, errors.New("render failed")
	}
	d.rendered = append(d.rendered, n)
	// encode the page number in the width so the recognizer can tell pages apart
	return image.NewGray(image.Rect(0, 0, n, 1)), nil
}

func (d *fakeRasterDoc) Close() error { return nil }

type fakeRasterizer struct {
	doc *fakeRasterDoc
}

func (r fakeRasterizer) OpenRaster(string) (RasterDocument, error) { return r.doc, nil }

type fakeRecognizer struct {
	pages map[int]string
	calls int
}

func (r *fakeRecognizer) Recognize(_ context.Context, img image.Image) (string, error) {
	r.calls++
	return r.pages[img.Bounds().Dx()], nil
}

func newTestSource(text *fakeTextDoc, raster *fakeRasterDoc, rec *fakeRecognizer) *Source {
	cfg := SourceConfig{Text: fakeTextOpener{doc: text}}
	if raster != nil {
		cfg.Raster = fakeRasterizer{doc: raster}
	}
	if rec != nil {
		cfg.OCR = rec
	}
	return NewSource(cfg)
}

func TestSource_ClassificationBoundary(t *testing.T) {
	tests := []struct {
		name  string
		first string
		want  State
	}{
		{name: "exactly threshold", first: strings.Repeat("a", 100), want: StateImageScan},
		{name: "one over threshold", first: strings.Repeat("a", 101), want: StateTextLayer},
		{name: "padding is trimmed", first: "  " + strings.Repeat("a", 100) + "\n\n", want: StateImageScan},
		{name: "empty page", first: "", want: StateImageScan},
		{name: "multibyte counted as characters", first: strings.Repeat("é", 100), want: StateImageScan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := &fakeTextDoc{pages: []string{tt.first}}
			raster := &fakeRasterDoc{pages: 1}
			src := newTestSource(text, raster, &fakeRecognizer{})

			out, err := src.Process(context.Background(), "doc.pdf", fields.NewAccumulator())
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Branch)
			assert.Equal(t, StateDone, out.Final)
			assert.Equal(t, tt.want, src.Classify(tt.first))
		})
	}
}

func TestSource_TextLayer(t *testing.T) {
	first := "Name: Jane Doe\n" + strings.Repeat("filler ", 20)
	text := &fakeTextDoc{pages: []string{first, "Email: jane@example.com"}}
	rec := &fakeRecognizer{}
	src := newTestSource(text, nil, rec)

	acc := fields.NewAccumulator()
	out, err := src.Process(context.Background(), "doc.pdf", acc)
	require.NoError(t, err)

	assert.Equal(t, StateTextLayer, out.Branch)
	assert.Equal(t, 2, out.PagesProcessed)
	assert.Equal(t, acc.Len(), out.Records)
	assert.Zero(t, rec.calls, "text layer documents never reach OCR")
	assert.True(t, text.closed)

	assert.Equal(t, []fields.Record{
		{Section: fields.SectionName, Detail: "Jane Doe " + strings.TrimSpace(strings.Repeat("filler ", 20))},
		{Section: fields.SectionName, Detail: "Jane Doe"},
		{Section: fields.SectionEmail, Detail: "jane@example.com"},
	}, acc.Records())
}

// A page is normalized as a whole before the rules run, so labels on later
// lines end up inside the detail of an earlier label.
func TestSource_PageIsClassifiedAsOneLine(t *testing.T) {
	page := "Name: Jane Doe\nEmail: jane@x.io\nPhone: 555"

	tests := []struct {
		name       string
		classifier *fields.Classifier
		want       []fields.Record
	}{
		{
			name:       "whole page by default",
			classifier: fields.NewClassifier(fields.Options{}),
			want: []fields.Record{
				{Section: fields.SectionName, Detail: "Jane Doe Email: jane@x.io Phone: 555"},
				{Section: fields.SectionPhone, Detail: "555"},
				{Section: fields.SectionName, Detail: "Jane Doe Email"},
			},
		},
		{
			name:       "split lines when enabled",
			classifier: fields.NewClassifier(fields.Options{SplitLines: true}),
			want: []fields.Record{
				{Section: fields.SectionName, Detail: "Jane Doe"},
				{Section: fields.SectionName, Detail: "Jane Doe"},
				{Section: fields.SectionEmail, Detail: "jane@x.io"},
				{Section: fields.SectionPhone, Detail: "555"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewSource(SourceConfig{
				Text:       fakeTextOpener{doc: &fakeTextDoc{pages: []string{""}}},
				Raster:     fakeRasterizer{doc: &fakeRasterDoc{pages: 1}},
				OCR:        &fakeRecognizer{pages: map[int]string{1: page}},
				Classifier: tt.classifier,
			})

			acc := fields.NewAccumulator()
			out, err := src.Process(context.Background(), "scan.pdf", acc)
			require.NoError(t, err)
			assert.Equal(t, StateImageScan, out.Branch)
			assert.Equal(t, tt.want, acc.Records())
		})
	}
}

func TestSource_ImageScan(t *testing.T) {
	text := &fakeTextDoc{pages: []string{"", ""}}
	raster := &fakeRasterDoc{pages: 2}
	rec := &fakeRecognizer{pages: map[int]string{
		1: "Skill: Go",
		2: "Total $1,250.00",
	}}
	src := newTestSource(text, raster, rec)

	acc := fields.NewAccumulator()
	out, err := src.Process(context.Background(), "scan.pdf", acc)
	require.NoError(t, err)

	assert.Equal(t, StateImageScan, out.Branch)
	assert.Equal(t, StateDone, out.Final)
	assert.Equal(t, []int{1, 2}, raster.rendered)
	assert.InDelta(t, float64(DefaultDPI), raster.dpi, 1e-9)
	assert.Equal(t, []fields.Record{
		{Section: fields.SectionSkill, Detail: "Skill: Go"},
		{Section: fields.SectionAmount, Detail: "$1,250.00"},
	}, acc.Records())
}

func TestSource_Failures(t *testing.T) {
	longPage := strings.Repeat("Skill: go ", 15)

	t.Run("open failure", func(t *testing.T) {
		src := NewSource(SourceConfig{Text: fakeTextOpener{err: errors.New("not a pdf")}})
		acc := fields.NewAccumulator()
		out, err := src.Process(context.Background(), "bad.pdf", acc)
		require.Error(t, err)
		assert.Equal(t, StateFailed, out.Final)
		assert.Equal(t, StateUnclassified, out.Branch)
		assert.Zero(t, acc.Len())
	})

	t.Run("no pages", func(t *testing.T) {
		src := newTestSource(&fakeTextDoc{}, nil, nil)
		_, err := src.Process(context.Background(), "empty.pdf", fields.NewAccumulator())
		assert.ErrorIs(t, err, ErrNoPages)
	})

	t.Run("unreadable first page is never classified", func(t *testing.T) {
		src := newTestSource(&fakeTextDoc{pages: []string{longPage}, errAt: 1}, nil, nil)
		acc := fields.NewAccumulator()
		out, err := src.Process(context.Background(), "doc.pdf", acc)
		assert.ErrorIs(t, err, ErrUnreadablePage)
		assert.Equal(t, StateUnclassified, out.Branch)
		assert.Zero(t, acc.Len())
	})

	t.Run("later text page keeps earlier records", func(t *testing.T) {
		text := &fakeTextDoc{pages: []string{longPage, "Email: a@b.c", "Email: never"}, errAt: 2}
		src := newTestSource(text, nil, nil)
		acc := fields.NewAccumulator()
		out, err := src.Process(context.Background(), "doc.pdf", acc)
		assert.ErrorIs(t, err, ErrUnreadablePage)
		assert.Equal(t, StateFailed, out.Final)
		assert.Equal(t, 1, out.PagesProcessed)
		require.Equal(t, 1, acc.Len())
		assert.Equal(t, fields.SectionSkill, acc.Records()[0].Section)
	})

	t.Run("render failure keeps earlier pages", func(t *testing.T) {
		raster := &fakeRasterDoc{pages: 3, errAt: 2}
		rec := &fakeRecognizer{pages: map[int]string{1: "Email: first@page.io", 3: "Email: third@page.io"}}
		src := newTestSource(&fakeTextDoc{pages: []string{""}}, raster, rec)
		acc := fields.NewAccumulator()
		out, err := src.Process(context.Background(), "scan.pdf", acc)
		require.Error(t, err)
		assert.Equal(t, StateImageScan, out.Branch)
		assert.Equal(t, StateFailed, out.Final)
		assert.Equal(t, []fields.Record{{Section: fields.SectionEmail, Detail: "first@page.io"}}, acc.Records())
	})

	t.Run("scan without recognizer", func(t *testing.T) {
		src := newTestSource(&fakeTextDoc{pages: []string{""}}, &fakeRasterDoc{pages: 1}, nil)
		_, err := src.Process(context.Background(), "scan.pdf", fields.NewAccumulator())
		assert.ErrorIs(t, err, ErrNoRecognizer)
	})

	t.Run("decoder panic becomes an error", func(t *testing.T) {
		src := newTestSource(&fakeTextDoc{pages: []string{longPage}, panics: true}, nil, nil)
		out, err := src.Process(context.Background(), "doc.pdf", fields.NewAccumulator())
		assert.ErrorIs(t, err, ErrDecoderPanicked)
		assert.Equal(t, StateFailed, out.Final)
	})

	t.Run("canceled context stops before the first page", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		src := newTestSource(&fakeTextDoc{pages: []string{longPage}}, nil, nil)
		acc := fields.NewAccumulator()
		_, err := src.Process(ctx, "doc.pdf", acc)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, acc.Len())
	})
}

func TestSource_CustomThresholdAndDPI(t *testing.T) {
	raster := &fakeRasterDoc{pages: 1}
	src := NewSource(SourceConfig{
		Text:          fakeTextOpener{doc: &fakeTextDoc{pages: []string{"short but enough"}}},
		Raster:        fakeRasterizer{doc: raster},
		OCR:           &fakeRecognizer{},
		TextThreshold: 5,
		DPI:           150,
	})

	out, err := src.Process(context.Background(), "doc.pdf", fields.NewAccumulator())
	require.NoError(t, err)
	assert.Equal(t, StateTextLayer, out.Branch)
	assert.Empty(t, raster.rendered)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "text_layer", StateTextLayer.String())
	assert.Equal(t, "image_scan", StateImageScan.String())
	assert.Equal(t, "unknown", State(42).String())
}
