package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	dpdf "github.com/dslipak/pdf"
	lpdf "github.com/ledongthuc/pdf"
)

// pdfStrategy is one way of pulling plain text out of a PDF.
type pdfStrategy struct {
	name    string
	extract func(data []byte) (string, error)
}

// pdfStrategies are tried in order until one yields text.
var pdfStrategies = []pdfStrategy{
	{name: "ledongthuc", extract: extractPerPage},
	{name: "dslipak", extract: extractWholeDocument},
}

// ExtractPDFText returns the cleaned plain text of the PDF at path, or "" when
// the file cannot be read or no strategy yields text. Failures are logged,
// never returned.
func ExtractPDFText(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read PDF", "path", path, "error", err)
		return ""
	}
	text := ExtractPDFBytes(data)
	if text == "" {
		slog.Error("Failed to extract text from PDF", "path", path)
	}
	return text
}

// ExtractPDFBytes runs the extraction strategies over an in-memory PDF.
func ExtractPDFBytes(data []byte) string {
	for _, s := range pdfStrategies {
		text, err := safeExtract(s, data)
		if err != nil {
			slog.Warn("PDF extraction strategy failed", "strategy", s.name, "error", err)
			continue
		}
		if text = CleanText(text); text != "" {
			return text
		}
		slog.Warn("PDF extraction strategy returned no text", "strategy", s.name)
	}
	return ""
}

// safeExtract converts parser panics on malformed input into errors.
func safeExtract(s pdfStrategy, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", s.name, r)
		}
	}()
	return s.extract(data)
}

// extractPerPage reads each page separately and joins pages with newlines.
func extractPerPage(data []byte) (string, error) {
	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// extractWholeDocument reads the document text in one pass.
func extractWholeDocument(data []byte) (string, error) {
	reader, err := dpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return buf.String(), nil
}
