package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/akozyrev/techdocs-qa/internal/core/ports"
	"github.com/akozyrev/techdocs-qa/internal/core/respcache"
	"github.com/akozyrev/techdocs-qa/internal/core/telemetry"
	"github.com/akozyrev/techdocs-qa/internal/observability/metrics"
)

// TrafficControl bounds the request intake of the api process.
type TrafficControl struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
}

type Router struct {
	ingest ports.FileIngestor
	files  ports.FileReader
	ask    ports.QuestionService

	collector *telemetry.Aggregator
	cache     *respcache.Cache

	httpMetrics *metrics.HTTPServerMetrics
	traffic     TrafficControl
}

func NewRouter(
	ingest ports.FileIngestor,
	files ports.FileReader,
	ask ports.QuestionService,
	collector *telemetry.Aggregator,
	cache *respcache.Cache,
	httpMetrics *metrics.HTTPServerMetrics,
	traffic TrafficControl,
) *Router {
	return &Router{
		ingest:      ingest,
		files:       files,
		ask:         ask,
		collector:   collector,
		cache:       cache,
		httpMetrics: httpMetrics,
		traffic:     traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/files", rt.uploadFile)
	mux.HandleFunc("/v1/files/", rt.getFileByID)
	mux.HandleFunc("/v1/ask", rt.askQuestion)
	mux.HandleFunc("/v1/stats", rt.systemStats)
	if rt.httpMetrics != nil {
		mux.Handle("/metrics", rt.httpMetrics.Handler())
	}

	var handler http.Handler = mux
	if rt.traffic.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.traffic.MaxInFlight, 50*time.Millisecond)
	}
	if rt.traffic.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	}
	if rt.httpMetrics != nil {
		handler = rt.httpMetrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	record, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, record)
}

func (rt *Router) getFileByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/files/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file id is required"})
		return
	}

	record, err := rt.files.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) askQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		Depth    int    `json:"depth"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	record, err := rt.ask.Ask(r.Context(), req.Question, ports.AskOptions{Depth: req.Depth})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.httpMetrics != nil {
		rt.httpMetrics.RecordAsk(
			"api",
			false,
			string(record.Confidence.Label),
			record.Confidence.Overall,
			len(record.Sources),
			record.Duration,
		)
	}
	writeJSON(w, http.StatusOK, record)
}

// SystemStats is the payload of GET /v1/stats: the rolling telemetry
// window next to lifetime cache counters.
type SystemStats struct {
	Telemetry telemetry.AggregateStats `json:"telemetry"`
	Cache     respcache.Stats          `json:"cache"`
}

func (rt *Router) systemStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	writeJSON(w, http.StatusOK, SystemStats{
		Telemetry: rt.collector.Snapshot(),
		Cache:     rt.cache.Stats(),
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
