package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
)

func TestIndexDocumentsEnsuresCollectionOncePerVectorSize(t *testing.T) {
	var ensureCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/chunks":
			atomic.AddInt32(&ensureCalls, 1)
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/chunks/points":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "chunks")
	docs := []domain.Document{
		{ID: "f1:0", Source: "a.pdf", Text: "a"},
		{ID: "f1:1", Source: "a.pdf", Text: "b"},
	}
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	if err := client.IndexDocuments(context.Background(), docs, vectors); err != nil {
		t.Fatalf("first IndexDocuments() error = %v", err)
	}
	if err := client.IndexDocuments(context.Background(), docs, vectors); err != nil {
		t.Fatalf("second IndexDocuments() error = %v", err)
	}
	if got := atomic.LoadInt32(&ensureCalls); got != 1 {
		t.Fatalf("expected ensure collection called once, got %d", got)
	}
}

func TestEnsureCollectionIncludesResponseBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/chunks" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "chunks")
	err := client.IndexDocuments(context.Background(), []domain.Document{{ID: "f1:0", Text: "a"}}, [][]float32{{0.1, 0.2}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := err.Error(); got == "" || !strings.Contains(got, "boom") {
		t.Fatalf("expected error to include body, got %v", err)
	}
}

func TestSearchMapsPayloadToRankedList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/collections/chunks/points/search" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode search request: %v", err)
		}
		if payload["limit"].(float64) != 7 {
			t.Fatalf("expected limit 7, got %v", payload["limit"])
		}
		_, _ = w.Write([]byte(`{"result":[
			{"score":0.91,"payload":{"chunk_id":"f1:2","source":"amp.pdf","page":3,"content_type":"datasheet","text":"SNR 98 dB"}}
		]}`))
	}))
	defer server.Close()

	client := New(server.URL, "chunks")
	list, err := client.Search(context.Background(), []float32{0.1, 0.2}, 7)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one result, got %d", len(list))
	}
	got := list[0]
	if got.ID != "f1:2" || got.Source != "amp.pdf" || got.Page != 3 || got.ContentType != "datasheet" || got.Score != 0.91 {
		t.Fatalf("unexpected document: %+v", got)
	}
}
