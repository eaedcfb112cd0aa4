package cache

import "time"

// CachedResult is a previously computed processing outcome keyed by document
// content. Only derived data is stored; the original upload never enters Redis.
type CachedResult struct {
	Redacted     string         `json:"redacted"`
	Findings     map[string]int `json:"findings"`
	Cleaned      bool           `json:"cleaned"`
	SourceKind   string         `json:"source_kind"`
	ProcessingMS int64          `json:"processing_ms"`
	CachedAt     time.Time      `json:"cached_at"`
	TTL          int64          `json:"ttl_seconds"`
}

// Stats reports cache performance counters.
type Stats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	HitRate     float64 `json:"hit_rate"`
	TotalKeys   int64   `json:"total_keys"`
	MemoryUsage int64   `json:"memory_usage_bytes"`
}
