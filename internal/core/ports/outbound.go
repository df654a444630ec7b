package ports

import (
	"context"
	"io"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
)

// FileRepository persists and reads uploaded file state.
type FileRepository interface {
	Create(ctx context.Context, file *domain.SourceFile) error
	GetByID(ctx context.Context, id string) (*domain.SourceFile, error)
	UpdateStatus(ctx context.Context, id string, status domain.FileStatus, errMessage string) error
	SaveExtractionResult(ctx context.Context, id string, contentType string, pages int) error
}

// ObjectStorage stores raw uploaded files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes file processing events.
type MessageQueue interface {
	PublishFileUploaded(ctx context.Context, fileID string) error
	SubscribeFileUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// Extraction is the result of pulling plain text out of a stored file.
type Extraction struct {
	Text        string
	ContentType string
	Pages       int
}

// TextExtractor extracts plain text from a stored file.
type TextExtractor interface {
	Extract(ctx context.Context, file *domain.SourceFile) (Extraction, error)
}

// Chunker splits extracted text into retrieval-sized snippets.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SemanticIndex indexes chunk documents and ranks them by vector
// similarity.
type SemanticIndex interface {
	IndexDocuments(ctx context.Context, docs []domain.Document, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int) (domain.RankedList, error)
}

// LexicalIndex indexes chunk documents and ranks them by keyword
// relevance. An empty index returns an empty list, not an error.
type LexicalIndex interface {
	IndexDocuments(ctx context.Context, docs []domain.Document) error
	Search(ctx context.Context, query string, limit int) (domain.RankedList, error)
}

// AnswerGenerator creates the final user-facing answer from the fused
// source documents.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, sources []domain.Document) (string, error)
}
