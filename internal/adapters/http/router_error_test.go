package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
	"github.com/akozyrev/techdocs-qa/internal/core/ports"
)

type ingestErrFake struct {
	err error
}

func (f ingestErrFake) Upload(context.Context, string, string, io.Reader) (*domain.SourceFile, error) {
	return nil, f.err
}

type askErrFake struct {
	err error
}

func (f askErrFake) Ask(context.Context, string, ports.AskOptions) (*domain.AnswerRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AnswerRecord{Answer: "ok", Confidence: domain.ConfidenceBreakdown{Label: domain.ConfidenceHigh}}, nil
}

type filesErrFake struct {
	err error
}

func (f filesErrFake) GetByID(context.Context, string) (*domain.SourceFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SourceFile{ID: "file-1", Filename: "a", MimeType: "text/plain", StoragePath: "a", Status: domain.StatusReady}, nil
}

func TestAskMapsDomainInvalidInputTo400(t *testing.T) {
	handler := newTestRouter(t,
		ingestErrFake{},
		filesErrFake{},
		askErrFake{err: domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("bad question"))},
		TrafficControl{},
	)

	payload, _ := json.Marshal(map[string]any{"question": "test"})
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAskMapsTemporaryTo503WithRetryAfter(t *testing.T) {
	handler := newTestRouter(t,
		ingestErrFake{},
		filesErrFake{},
		askErrFake{err: domain.WrapError(domain.ErrTemporary, "ask", errors.New("model offline"))},
		TrafficControl{},
	)

	payload, _ := json.Marshal(map[string]any{"question": "test"})
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
	if res.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on 503")
	}
}

func TestGetFileByIDReturns404ForNotFound(t *testing.T) {
	handler := newTestRouter(t,
		ingestErrFake{},
		filesErrFake{err: domain.WrapError(domain.ErrFileNotFound, "get", errors.New("id=missing"))},
		askErrFake{},
		TrafficControl{},
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/files/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestStatsEndpointReturnsTelemetryAndCache(t *testing.T) {
	handler := newTestRouter(t, ingestErrFake{}, filesErrFake{}, askErrFake{}, TrafficControl{})

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var stats map[string]any
	if err := json.NewDecoder(res.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if _, ok := stats["telemetry"]; !ok {
		t.Fatalf("expected telemetry block, got %+v", stats)
	}
	if _, ok := stats["cache"]; !ok {
		t.Fatalf("expected cache block, got %+v", stats)
	}
}
