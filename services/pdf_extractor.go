package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"unicode"

	"modular-rag-service/internal/logger"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor pulls plain text out of uploaded PDF content.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDF extractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractText tries pdftotext first when installed, then the pure-Go reader.
// The first result passing a cheap quality check wins.
func (e *PDFExtractor) ExtractText(ctx context.Context, content []byte) (string, error) {
	methods := []struct {
		name    string
		extract func(context.Context, []byte) (string, error)
	}{
		{"poppler", e.extractWithPoppler},
		{"go-pdf", e.extractWithGoPDF},
	}

	var lastErr error
	for _, method := range methods {
		text, err := method.extract(ctx, content)
		if err != nil {
			logger.Debug("pdf extraction method failed", "method", method.name, "error", err)
			lastErr = err
			continue
		}
		if textQuality(text) >= 0.3 {
			logger.Debug("pdf extracted", "method", method.name, "chars", len(text))
			return text, nil
		}
		lastErr = fmt.Errorf("%s produced low-quality text", method.name)
	}

	return "", fmt.Errorf("all extraction methods failed: %v", lastErr)
}

func (e *PDFExtractor) extractWithPoppler(ctx context.Context, content []byte) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not installed")
	}

	tmp, err := os.CreateTemp("", "ingest-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", err
	}
	tmp.Close()

	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", tmp.Name(), "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}

func (e *PDFExtractor) extractWithGoPDF(_ context.Context, content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// textQuality scores extracted text by the share of sensible characters, to
// catch extractors that decode a page into garbage rather than failing.
func textQuality(text string) float64 {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return 0
	}
	sensible := 0
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsPunct(r) {
			sensible++
		}
	}
	return float64(sensible) / float64(len(runes))
}
