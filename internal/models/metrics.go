package models

import "time"

// SystemMetrics is a lightweight runtime snapshot served alongside Prometheus output.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	JournalCommits           uint64    `json:"journal_commits"`
	AIRequests               uint64    `json:"ai_requests"`
	AIFailures               uint64    `json:"ai_failures"`
	EventSubscribers         int64     `json:"event_subscribers"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
