package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withStrategies(t *testing.T, strategies ...pdfStrategy) {
	t.Helper()
	saved := pdfStrategies
	pdfStrategies = strategies
	t.Cleanup(func() { pdfStrategies = saved })
}

func TestExtractPDFText_MissingFile(t *testing.T) {
	assert.Equal(t, "", ExtractPDFText(filepath.Join(t.TempDir(), "missing.pdf")))
}

func TestExtractPDFText_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 this is not really a pdf"), 0o644))

	assert.Equal(t, "", ExtractPDFText(path))
}

func TestExtractPDFBytes_FallsBackAfterError(t *testing.T) {
	var calls []string
	withStrategies(t,
		pdfStrategy{name: "primary", extract: func([]byte) (string, error) {
			calls = append(calls, "primary")
			return "", errors.New("unsupported encoding")
		}},
		pdfStrategy{name: "secondary", extract: func([]byte) (string, error) {
			calls = append(calls, "secondary")
			return "Page one\nPage two\n", nil
		}},
	)

	assert.Equal(t, "Page one\nPage two", ExtractPDFBytes([]byte("x")))
	assert.Equal(t, []string{"primary", "secondary"}, calls)
}

func TestExtractPDFBytes_FallsBackAfterPanic(t *testing.T) {
	withStrategies(t,
		pdfStrategy{name: "primary", extract: func([]byte) (string, error) {
			panic("malformed xref")
		}},
		pdfStrategy{name: "secondary", extract: func([]byte) (string, error) {
			return "recovered text", nil
		}},
	)

	assert.Equal(t, "recovered text", ExtractPDFBytes([]byte("x")))
}

func TestExtractPDFBytes_FallsBackAfterEmptyText(t *testing.T) {
	withStrategies(t,
		pdfStrategy{name: "primary", extract: func([]byte) (string, error) {
			return "  \n ", nil
		}},
		pdfStrategy{name: "secondary", extract: func([]byte) (string, error) {
			return "scanned text", nil
		}},
	)

	assert.Equal(t, "scanned text", ExtractPDFBytes([]byte("x")))
}

func TestExtractPDFBytes_PrimaryWins(t *testing.T) {
	secondaryCalled := false
	withStrategies(t,
		pdfStrategy{name: "primary", extract: func([]byte) (string, error) {
			return "primary text", nil
		}},
		pdfStrategy{name: "secondary", extract: func([]byte) (string, error) {
			secondaryCalled = true
			return "secondary text", nil
		}},
	)

	assert.Equal(t, "primary text", ExtractPDFBytes([]byte("x")))
	assert.False(t, secondaryCalled)
}

func TestExtractPDFBytes_AllFail(t *testing.T) {
	withStrategies(t,
		pdfStrategy{name: "primary", extract: func([]byte) (string, error) {
			return "", errors.New("boom")
		}},
		pdfStrategy{name: "secondary", extract: func([]byte) (string, error) {
			return "", errors.New("boom")
		}},
	)

	assert.Equal(t, "", ExtractPDFBytes([]byte("x")))
}

// buildPDF writes a minimal PDF with one Helvetica text line per page and a
// byte-accurate xref table.
func buildPDF(lines ...string) []byte {
	fontObj := 3 + 2*len(lines)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
	}
	kids := make([]string, 0, len(lines))
	for i := range lines {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+2*i))
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(lines)))
	for i, line := range lines {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", line)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

var resumePages = []string{"Projects", "Inventory dashboard app", "React, Node.js, led a team"}

func TestExtractPDFText_ValidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, buildPDF(resumePages...), 0o644))

	assert.Equal(t, "Projects\nInventory dashboard app\nReact, Node.js, led a team", ExtractPDFText(path))
}

func TestExtractPerPage_JoinsPagesWithNewlines(t *testing.T) {
	text, err := extractPerPage(buildPDF(resumePages...))
	require.NoError(t, err)

	pages := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.Len(t, pages, len(resumePages))
	for i, want := range resumePages {
		assert.Equal(t, want, strings.TrimSpace(pages[i]))
	}
}

func TestExtractWholeDocument_ValidDocument(t *testing.T) {
	text, err := extractWholeDocument(buildPDF(resumePages...))
	require.NoError(t, err)

	for _, want := range resumePages {
		assert.Contains(t, text, want)
	}
}
