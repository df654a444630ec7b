package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
	"github.com/akozyrev/techdocs-qa/internal/core/ports"
)

// ProcessFileUseCase turns an uploaded file into indexed chunk
// documents: extract text, split, embed, then fan out to both the
// semantic and the lexical index so either retrieval path can rank
// the same snippets.
type ProcessFileUseCase struct {
	repo      ports.FileRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	semantic  ports.SemanticIndex
	lexical   ports.LexicalIndex
}

func NewProcessFileUseCase(
	repo ports.FileRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	semantic ports.SemanticIndex,
	lexical ports.LexicalIndex,
) *ProcessFileUseCase {
	return &ProcessFileUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		semantic:  semantic,
		lexical:   lexical,
	}
}

func (uc *ProcessFileUseCase) ProcessByID(ctx context.Context, fileID string) error {
	if err := uc.repo.UpdateStatus(ctx, fileID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	extraction, err := uc.processPipeline(ctx, fileID)
	if err != nil {
		if failErr := uc.markFailed(ctx, fileID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveExtractionResult(ctx, fileID, extraction.ContentType, extraction.Pages); err != nil {
		if failErr := uc.markFailed(ctx, fileID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, fileID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessFileUseCase) processPipeline(ctx context.Context, fileID string) (ports.Extraction, error) {
	file, err := uc.repo.GetByID(ctx, fileID)
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("fetch file by id: %w", err)
	}

	extraction, err := uc.extractor.Extract(ctx, file)
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("extract text: %w", err)
	}
	if extraction.Text == "" {
		return ports.Extraction{}, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	chunks := uc.chunker.Split(extraction.Text)
	if len(chunks) == 0 {
		return ports.Extraction{}, domain.WrapError(domain.ErrInvalidInput, "chunk text", errors.New("chunking produced zero chunks"))
	}

	vectors, err := uc.embedder.Embed(ctx, chunks)
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return ports.Extraction{}, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}

	docs := chunkDocuments(file, extraction, chunks)
	if err := uc.semantic.IndexDocuments(ctx, docs, vectors); err != nil {
		return ports.Extraction{}, fmt.Errorf("index chunks in semantic index: %w", err)
	}
	if err := uc.lexical.IndexDocuments(ctx, docs); err != nil {
		return ports.Extraction{}, fmt.Errorf("index chunks in lexical index: %w", err)
	}

	return extraction, nil
}

func (uc *ProcessFileUseCase) markFailed(ctx context.Context, fileID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.repo.UpdateStatus(ctx, fileID, domain.StatusFailed, processErr.Error())
}

// chunkDocuments assigns stable per-file chunk identifiers and an
// approximate page position derived from chunk order.
func chunkDocuments(file *domain.SourceFile, extraction ports.Extraction, chunks []string) []domain.Document {
	docs := make([]domain.Document, 0, len(chunks))
	for i, chunk := range chunks {
		page := 0
		if extraction.Pages > 0 {
			page = i*extraction.Pages/len(chunks) + 1
		}
		docs = append(docs, domain.Document{
			ID:          fmt.Sprintf("%s:%d", file.ID, i),
			Text:        chunk,
			Source:      file.Filename,
			Page:        page,
			ContentType: extraction.ContentType,
		})
	}
	return docs
}
