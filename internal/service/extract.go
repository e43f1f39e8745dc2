package service

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docubase-ai/docubase/internal/domain"
	"github.com/ledongthuc/pdf"
)

// ExtractText reads the document at path and returns its plain-text content.
// PDFs are parsed page by page; anything else is treated as UTF-8 text.
func ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".txt", ".md", ".text", "":
		return extractPlainText(path)
	default:
		return "", domain.NewDomainError(domain.ErrCodeExtraction,
			fmt.Sprintf("unsupported document type %q", filepath.Ext(path)))
	}
}

func extractPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to read document", err)
	}
	return string(data), nil
}

func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to open pdf", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to extract pdf text", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to read pdf text", err)
	}

	return buf.String(), nil
}
