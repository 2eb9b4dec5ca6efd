package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"docassist/internal/domain/ragmodel"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

func getDocType(docPath string) ragmodel.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return ragmodel.PDF
	case ".docx", ".rtf", ".odt":
		return ragmodel.DOCX
	case ".txt", ".md":
		return ragmodel.RawText
	default:
		return ragmodel.ERR
	}
}

// extractText pulls the plain text out of an uploaded file. Parsing stops
// here: downstream only ever sees a string.
func extractText(path string, contentType ragmodel.DocType) (string, error) {
	switch contentType {
	case ragmodel.PDF:
		return extractPDF(path)
	case ragmodel.DOCX, ragmodel.RawText:
		return extractWithCat(path)
	default:
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func extractPDF(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening pdf file", "path", path)
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var text strings.Builder
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// A single bad page should not sink the document.
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString(content)
	}
	return text.String(), nil
}

// protectExtract recovers from the panics the pdf library throws on
// malformed content streams.
func protectExtract(page pdf.Page) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf extraction panicked: %v", r)
		}
	}()
	return page.GetPlainText(nil)
}

// extractWithCat reads .odt, .docx, .rtf or plaintext files.
func extractWithCat(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from document", "path", path)
		return "", fmt.Errorf("failed to extract document text: %w", err)
	}
	return text, nil
}
