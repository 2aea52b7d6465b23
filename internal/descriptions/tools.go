// Package descriptions holds the long-form help text the MCP tools advertise.
package descriptions

import "sort"

// Tool names
const (
	ExtractDirectory = "extract_directory"
	ClassifyText     = "classify_text"
	ValidatePDF      = "validate_pdf"
	ListPDFs         = "list_pdfs"
)

const (
	ExtractDirectoryDescription = `Extract labelled fields from every PDF in a directory.

**When to use:** A folder of resumes, forms or invoices needs to become a table of Name, Email, Phone, Date, Amount and similar rows.

**How it works:** Each PDF whose first page carries more than a threshold of text is read from its text layer. Anything else is rendered at 300 DPI, contrast-enhanced and passed through Tesseract OCR. Every line is then checked against the field rules.

**Examples:**
• "Extract all fields from the resumes folder"
• "Process ./invoices and save the result to invoices.xlsx"

**Output:** JSON with the records in document order, run statistics (scanned, matched, succeeded, failed, text_layer, image_scan) and per-file failures. When output is given, an .xlsx workbook with one "Extracted Data" sheet is written.

**Notes:** Only .pdf files directly inside the directory are processed, in name order. A broken file is reported and skipped. It never stops the run.`

	ClassifyTextDescription = `Run the field rules on raw text without reading a PDF.

**When to use:** Text is already at hand (copied from an email, produced by another OCR) and only the field extraction is needed.

**Examples:**
• "Classify: Name: Jane Doe\nBorn 05 March 1990\nTotal $1,250.00"

**Output:** JSON records, one per rule hit. A single line may yield several records, for example a Name label that also contains a date.`

	ValidatePDFDescription = `Verify that a file is a PDF the extractor can open.

**When to use:** Before extraction, when a file comes from an unknown source or extraction reported it as failed.

**Output:** Page count, PDF version, whether the document is encrypted, and file size. A file that fails validation is reported with the reason and is not treated as a tool error.`

	ListPDFsDescription = `List the PDF files that extract_directory would process.

**When to use:** To check what a directory holds before running a full extraction.

**Output:** File names in processing order with size and modification time.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	ExtractDirectory: ExtractDirectoryDescription,
	ClassifyText:     ClassifyTextDescription,
	ValidatePDF:      ValidatePDFDescription,
	ListPDFs:         ListPDFsDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
