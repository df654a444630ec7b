package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
	"github.com/akozyrev/techdocs-qa/internal/core/ports"
	"github.com/akozyrev/techdocs-qa/internal/infrastructure/extractor/pdf"
	"github.com/akozyrev/techdocs-qa/internal/infrastructure/extractor/plaintext"
)

// Router picks the text backend by MIME type and tags the result with
// a coarse content type used downstream for source attribution.
type Router struct {
	storage ports.ObjectStorage
}

func NewRouter(storage ports.ObjectStorage) *Router {
	return &Router{storage: storage}
}

func (r *Router) Extract(ctx context.Context, file *domain.SourceFile) (ports.Extraction, error) {
	reader, err := r.storage.Open(ctx, file.StoragePath)
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("open stored file: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("read stored file: %w", err)
	}

	var text string
	var pages int
	switch {
	case file.MimeType == "application/pdf" || strings.HasSuffix(strings.ToLower(file.Filename), ".pdf"):
		text, pages, err = pdf.Extract(raw)
	default:
		text, pages, err = plaintext.Extract(raw)
	}
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("extract %s: %w", file.Filename, err)
	}

	return ports.Extraction{
		Text:        text,
		ContentType: ClassifyContent(file.Filename, text),
		Pages:       pages,
	}, nil
}

// ClassifyContent labels a document by filename and body keywords.
// The label travels with every chunk and shows up in answer sources.
func ClassifyContent(filename, text string) string {
	probe := strings.ToLower(filename) + " " + strings.ToLower(firstN(text, 2000))

	switch {
	case containsAny(probe, "datasheet", "specifications", "technical data", "electrical characteristics"):
		return "datasheet"
	case containsAny(probe, "faq", "frequently asked", "q:", "troubleshooting"):
		return "faq"
	case containsAny(probe, "manual", "user guide", "owner's", "instructions", "setup"):
		return "manual"
	default:
		return "document"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
