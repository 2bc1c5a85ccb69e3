package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdfchat/internal/domain"
)

// infoKeys are the PDF document information entries copied onto every page.
var infoKeys = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer", "CreationDate", "ModDate"}

// PDFLoader reads a PDF into one Document per page.
type PDFLoader struct {
	log *slog.Logger
}

func NewPDFLoader(log *slog.Logger) *PDFLoader {
	return &PDFLoader{log: log}
}

// Load opens the file at path and extracts every page.
func (l *PDFLoader) Load(ctx context.Context, path string) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat pdf: %w", err)
	}
	return l.LoadReader(ctx, f, st.Size(), path)
}

// LoadReader extracts pages from an already opened PDF. source is recorded
// in the metadata of each page.
func (l *PDFLoader) LoadReader(ctx context.Context, r io.ReaderAt, size int64, source string) (docs []domain.Document, err error) {
	// ledongthuc/pdf panics on some malformed files.
	defer func() {
		if rec := recover(); rec != nil {
			docs = nil
			err = fmt.Errorf("read pdf %s: %v", source, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", source, err)
	}

	info := documentInfo(reader)
	pages := reader.NumPage()
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		meta := map[string]any{
			"source":      source,
			"page":        i - 1,
			"total_pages": pages,
		}
		for k, v := range info {
			meta[k] = v
		}

		var text string
		page := reader.Page(i)
		if !page.V.IsNull() {
			text, err = page.GetPlainText(fonts)
			if err != nil {
				l.log.Warn("failed to extract page text", "source", source, "page", i-1, "error", err)
				text = ""
			}
		}
		docs = append(docs, domain.Document{Content: text, Metadata: meta})
	}
	return docs, nil
}

func documentInfo(reader *pdf.Reader) map[string]string {
	out := make(map[string]string)
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return out
	}
	for _, key := range infoKeys {
		if v := strings.TrimSpace(info.Key(key).Text()); v != "" {
			out[strings.ToLower(key)] = v
		}
	}
	return out
}
