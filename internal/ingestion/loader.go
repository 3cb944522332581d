package ingestion

import (
	"fmt"
	"log"
	"os"
	"strings"

	"rsc.io/pdf"

	"docqa/internal/models"
)

// Loader extracts ordered page records from a document on disk
type Loader interface {
	Load(path string) ([]models.PageRecord, error)
}

// PDFLoader reads PDF files page by page
type PDFLoader struct {
	logger *log.Logger
}

// NewPDFLoader creates a new PDF loader
func NewPDFLoader(logger *log.Logger) *PDFLoader {
	return &PDFLoader{logger: logger}
}

// Load extracts text from every page of the PDF at path.
// Pages are returned in order with 0-based page numbers.
func (l *PDFLoader) Load(path string) (records []models.PageRecord, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, fmt.Errorf("document not found: %s", path)
	}

	// rsc.io/pdf panics on malformed files
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("failed to parse PDF %s: %v", path, r)
		}
	}()

	reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		var sb strings.Builder
		for _, text := range page.Content().Text {
			sb.WriteString(strings.ReplaceAll(text.S, "\x00", ""))
			sb.WriteString(" ")
		}

		records = append(records, models.PageRecord{
			Text: strings.TrimSpace(sb.String()),
			Page: i - 1,
		})
	}

	l.logger.Printf("Loaded %d pages from %s", len(records), path)
	return records, nil
}
