package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
	"github.com/akozyrev/techdocs-qa/internal/core/ports"
)

type statusCall struct {
	status domain.FileStatus
	errMsg string
}

type processRepoFake struct {
	file          *domain.SourceFile
	getErr        error
	saveErr       error
	statusErr     error
	failStatusErr error
	statusCalls   []statusCall
	savedID       string
	savedType     string
	savedPages    int
}

func (f *processRepoFake) Create(context.Context, *domain.SourceFile) error { return nil }

func (f *processRepoFake) GetByID(context.Context, string) (*domain.SourceFile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyFile := *f.file
	return &copyFile, nil
}

func (f *processRepoFake) UpdateStatus(_ context.Context, _ string, status domain.FileStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	if status == domain.StatusFailed && f.failStatusErr != nil {
		return f.failStatusErr
	}
	if f.statusErr != nil {
		return f.statusErr
	}
	return nil
}

func (f *processRepoFake) SaveExtractionResult(_ context.Context, id, contentType string, pages int) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedID = id
	f.savedType = contentType
	f.savedPages = pages
	return nil
}

type extractorFake struct {
	extraction ports.Extraction
	err        error
}

func (f *extractorFake) Extract(context.Context, *domain.SourceFile) (ports.Extraction, error) {
	if f.err != nil {
		return ports.Extraction{}, f.err
	}
	return f.extraction, nil
}

type chunkerFake struct {
	chunks []string
}

func (f *chunkerFake) Split(string) []string { return f.chunks }

type embedderFake struct {
	vectors [][]float32
	err     error
}

func (f *embedderFake) Embed(context.Context, []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

func (f *embedderFake) EmbedQuery(context.Context, string) ([]float32, error) { return nil, nil }

type semanticIndexFake struct {
	docs []domain.Document
	err  error
}

func (f *semanticIndexFake) IndexDocuments(_ context.Context, docs []domain.Document, _ [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.docs = docs
	return nil
}

func (f *semanticIndexFake) Search(context.Context, []float32, int) (domain.RankedList, error) {
	return nil, nil
}

type lexicalIndexFake struct {
	docs []domain.Document
	err  error
}

func (f *lexicalIndexFake) IndexDocuments(_ context.Context, docs []domain.Document) error {
	if f.err != nil {
		return f.err
	}
	f.docs = docs
	return nil
}

func (f *lexicalIndexFake) Search(context.Context, string, int) (domain.RankedList, error) {
	return nil, nil
}

func TestProcessByIDSuccess(t *testing.T) {
	repo := &processRepoFake{file: &domain.SourceFile{ID: "file-1", Filename: "amp.pdf"}}
	semantic := &semanticIndexFake{}
	lexical := &lexicalIndexFake{}
	uc := NewProcessFileUseCase(
		repo,
		&extractorFake{extraction: ports.Extraction{Text: "text", ContentType: "datasheet", Pages: 4}},
		&chunkerFake{chunks: []string{"a", "b"}},
		&embedderFake{vectors: [][]float32{{1}, {2}}},
		semantic,
		lexical,
	)

	if err := uc.ProcessByID(context.Background(), "file-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if len(repo.statusCalls) != 2 {
		t.Fatalf("expected 2 status calls, got %d", len(repo.statusCalls))
	}
	if repo.statusCalls[0].status != domain.StatusProcessing || repo.statusCalls[1].status != domain.StatusReady {
		t.Fatalf("unexpected status sequence: %+v", repo.statusCalls)
	}
	if repo.savedID != "file-1" || repo.savedType != "datasheet" || repo.savedPages != 4 {
		t.Fatalf("unexpected extraction result save: %s %s %d", repo.savedID, repo.savedType, repo.savedPages)
	}
	if len(semantic.docs) != 2 || len(lexical.docs) != 2 {
		t.Fatalf("expected both indexes to receive 2 docs, got %d/%d", len(semantic.docs), len(lexical.docs))
	}
	if semantic.docs[0].ID != "file-1:0" || semantic.docs[0].Source != "amp.pdf" {
		t.Fatalf("unexpected chunk document: %+v", semantic.docs[0])
	}
	if semantic.docs[0].Page != 1 || semantic.docs[1].Page != 3 {
		t.Fatalf("unexpected approximate pages: %d, %d", semantic.docs[0].Page, semantic.docs[1].Page)
	}
}

func TestProcessByIDMarksFailedOnExtractError(t *testing.T) {
	repo := &processRepoFake{file: &domain.SourceFile{ID: "file-1"}}
	uc := NewProcessFileUseCase(
		repo,
		&extractorFake{err: errors.New("extract fail")},
		&chunkerFake{chunks: []string{"a"}},
		&embedderFake{vectors: [][]float32{{1}}},
		&semanticIndexFake{},
		&lexicalIndexFake{},
	)

	err := uc.ProcessByID(context.Background(), "file-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.statusCalls) != 2 {
		t.Fatalf("expected processing + failed status updates, got %d", len(repo.statusCalls))
	}
	if repo.statusCalls[1].status != domain.StatusFailed {
		t.Fatalf("expected failed status, got %+v", repo.statusCalls[1])
	}
}

func TestProcessByIDMarksFailedOnVectorMismatch(t *testing.T) {
	repo := &processRepoFake{file: &domain.SourceFile{ID: "file-1"}}
	uc := NewProcessFileUseCase(
		repo,
		&extractorFake{extraction: ports.Extraction{Text: "text", ContentType: "manual", Pages: 1}},
		&chunkerFake{chunks: []string{"a", "b"}},
		&embedderFake{vectors: [][]float32{{1}}},
		&semanticIndexFake{},
		&lexicalIndexFake{},
	)

	err := uc.ProcessByID(context.Background(), "file-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.statusCalls) != 2 || repo.statusCalls[1].status != domain.StatusFailed {
		t.Fatalf("expected final failed status, got %+v", repo.statusCalls)
	}
}

func TestProcessByIDMarksFailedOnLexicalIndexError(t *testing.T) {
	repo := &processRepoFake{file: &domain.SourceFile{ID: "file-1", Filename: "a.txt"}}
	uc := NewProcessFileUseCase(
		repo,
		&extractorFake{extraction: ports.Extraction{Text: "text", ContentType: "manual", Pages: 1}},
		&chunkerFake{chunks: []string{"a"}},
		&embedderFake{vectors: [][]float32{{1}}},
		&semanticIndexFake{},
		&lexicalIndexFake{err: errors.New("index write fail")},
	)

	err := uc.ProcessByID(context.Background(), "file-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if repo.statusCalls[len(repo.statusCalls)-1].status != domain.StatusFailed {
		t.Fatalf("expected final failed status, got %+v", repo.statusCalls)
	}
}
