package telemetry

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// StageLatencies breaks a query's total latency down by pipeline stage.
type StageLatencies struct {
	Retrieval  time.Duration `json:"retrieval"`
	Fusion     time.Duration `json:"fusion"`
	Generation time.Duration `json:"generation"`
	Scoring    time.Duration `json:"scoring"`
}

// Sample is one recorded query execution. Immutable once recorded.
type Sample struct {
	Total         time.Duration  `json:"total"`
	Stages        StageLatencies `json:"stages"`
	CacheHit      bool           `json:"cache_hit"`
	Confidence    float64        `json:"confidence"`
	HasConfidence bool           `json:"has_confidence"`
	Success       bool           `json:"success"`
	At            time.Time      `json:"at"`
}

// LatencyStats summarizes total latency over the current window.
// Percentiles use the nearest-rank definition on the sorted window:
// index = ceil(q*n) - 1, so 100 samples of 1..100ms give p99 = 99ms.
type LatencyStats struct {
	Mean   time.Duration `json:"mean"`
	Median time.Duration `json:"median"`
	P95    time.Duration `json:"p95"`
	P99    time.Duration `json:"p99"`
}

type AggregateStats struct {
	Count          int            `json:"count"`
	SuccessRate    float64        `json:"success_rate"`
	CacheHitRate   float64        `json:"cache_hit_rate"`
	MeanConfidence float64        `json:"mean_confidence"`
	Latency        LatencyStats   `json:"latency"`
	StageMeans     StageLatencies `json:"stage_means"`
}

// Aggregator keeps a fixed-capacity rolling window of query samples.
// Record appends in FIFO order, evicting the oldest sample once full.
// Snapshot copies the window under the lock and aggregates outside it,
// so recording is never blocked by percentile computation.
type Aggregator struct {
	capacity int

	mu      sync.Mutex
	samples []Sample
	next    int // write position once the window is full
	full    bool
}

func NewAggregator(capacity int) (*Aggregator, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("telemetry: window capacity must be positive, got %d", capacity)
	}
	return &Aggregator{
		capacity: capacity,
		samples:  make([]Sample, 0, capacity),
	}, nil
}

func (a *Aggregator) Record(sample Sample) {
	if sample.At.IsZero() {
		sample.At = time.Now()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.full {
		a.samples = append(a.samples, sample)
		if len(a.samples) == a.capacity {
			a.full = true
		}
		return
	}
	a.samples[a.next] = sample
	a.next = (a.next + 1) % a.capacity
}

func (a *Aggregator) Snapshot() AggregateStats {
	a.mu.Lock()
	window := make([]Sample, len(a.samples))
	copy(window, a.samples)
	a.mu.Unlock()

	stats := AggregateStats{Count: len(window)}
	if len(window) == 0 {
		return stats
	}

	var (
		successes  int
		cacheHits  int
		confSum    float64
		confCount  int
		totalSum   time.Duration
		stageSums  StageLatencies
		totals     = make([]time.Duration, 0, len(window))
	)
	for _, s := range window {
		if s.Success {
			successes++
		}
		if s.CacheHit {
			cacheHits++
		}
		if s.HasConfidence {
			confSum += s.Confidence
			confCount++
		}
		totalSum += s.Total
		stageSums.Retrieval += s.Stages.Retrieval
		stageSums.Fusion += s.Stages.Fusion
		stageSums.Generation += s.Stages.Generation
		stageSums.Scoring += s.Stages.Scoring
		totals = append(totals, s.Total)
	}

	n := len(window)
	sort.Slice(totals, func(i, j int) bool { return totals[i] < totals[j] })

	stats.SuccessRate = float64(successes) / float64(n)
	stats.CacheHitRate = float64(cacheHits) / float64(n)
	if confCount > 0 {
		stats.MeanConfidence = confSum / float64(confCount)
	}
	stats.Latency = LatencyStats{
		Mean:   totalSum / time.Duration(n),
		Median: nearestRank(totals, 0.50),
		P95:    nearestRank(totals, 0.95),
		P99:    nearestRank(totals, 0.99),
	}
	stats.StageMeans = StageLatencies{
		Retrieval:  stageSums.Retrieval / time.Duration(n),
		Fusion:     stageSums.Fusion / time.Duration(n),
		Generation: stageSums.Generation / time.Duration(n),
		Scoring:    stageSums.Scoring / time.Duration(n),
	}
	return stats
}

// nearestRank returns the q-quantile of sorted as ceil(q*n)-1.
func nearestRank(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(float64(len(sorted)) * q)
	if float64(len(sorted))*q > float64(rank) {
		rank++ // ceil
	}
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
