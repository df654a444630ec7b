package ports

import (
	"context"
	"io"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
)

// AskOptions tune one question-answering request. Zero values fall
// back to the configured defaults.
type AskOptions struct {
	Depth int
}

// QuestionService is the inbound contract for cached, fused,
// reliability-scored question answering.
type QuestionService interface {
	Ask(ctx context.Context, question string, opts AskOptions) (*domain.AnswerRecord, error)
}

// FileIngestor is the inbound contract for file upload orchestration.
type FileIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.SourceFile, error)
}

// FileReader is the inbound read model for file metadata/state.
type FileReader interface {
	GetByID(ctx context.Context, id string) (*domain.SourceFile, error)
}

// FileProcessor is the inbound contract for asynchronous file
// processing.
type FileProcessor interface {
	ProcessByID(ctx context.Context, fileID string) error
}
