// Package pdftest builds small, well-formed PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Build returns a PDF with one page per entry of pages. Each page shows its
// text in Helvetica, one PDF text line per input line. An empty string
// produces a page without any text.
func Build(pages ...string) []byte {
	var (
		buf     bytes.Buffer
		offsets []int
	)

	// objects: 1 catalog, 2 page tree, 3 font, then page/content pairs
	pageCount := len(pages)
	total := 3 + 2*pageCount

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pageCount))

	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		content := contentStream(text)
		writeObj(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i))
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", total+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)

	return buf.Bytes()
}

func contentStream(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("BT /F1 10 Tf 14 TL 40 750 Td\n")
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&b, "(%s) Tj T*\n", escape(line))
	}
	b.WriteString("ET")
	return b.String()
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(s)
}

// WriteFile writes Build(pages...) to name inside dir and returns the path
func WriteFile(t testing.TB, dir, name string, pages ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages...), 0o600); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}
