package models

import "time"

// SystemMetrics is a lightweight snapshot of the service counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	ResultsComputed          uint64    `json:"results_computed"`
	RankingRuns              uint64    `json:"ranking_runs"`
	TermCorrections          uint64    `json:"term_corrections"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
