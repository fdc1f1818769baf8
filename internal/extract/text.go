package extract

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/gnegDev/path/constants"
	"github.com/gnegDev/path/internal/common"
)

// Extractor turns raw blob bytes into plain text. PDF content routes
// through a page-text stripper, anything else decodes as UTF-8.
type Extractor struct {
	log *slog.Logger
}

func NewExtractor(log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{log: log}
}

func (e *Extractor) ExtractText(data []byte, contentType, filename string) (string, error) {
	if constants.IsPDF(contentType, filename) {
		return e.extractPDF(data)
	}
	if !utf8.Valid(data) {
		return "", &common.ExtractionError{Cause: errInvalidUTF8}
	}
	return string(data), nil
}

func (e *Extractor) extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &common.ExtractionError{Cause: err}
	}

	var sb strings.Builder
	pageCount := reader.NumPage()
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.log.Warn("failed to extract text from page", "page", i, "error", err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	e.log.Info("extracted text from pdf", "pages", pageCount, "chars", sb.Len())
	return sb.String(), nil
}

var errInvalidUTF8 = errors.New("content is not valid UTF-8 text")
