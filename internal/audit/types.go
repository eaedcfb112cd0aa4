package audit

import (
	"encoding/json"
	"time"
)

// Job is one processed document recorded in the audit trail. Only metadata
// and finding counts are stored; document content never reaches the database.
type Job struct {
	ID           int64     `db:"id" json:"id"`
	RequestID    string    `db:"request_id" json:"request_id"`
	Filename     string    `db:"filename" json:"filename"`
	Kind         string    `db:"kind" json:"kind"`
	UseAI        bool      `db:"use_ai" json:"use_ai"`
	Cached       bool      `db:"cached" json:"cached"`
	Findings     string    `db:"findings" json:"findings"`
	FindingCount int       `db:"finding_count" json:"finding_count"`
	ProcessingMS int64     `db:"processing_ms" json:"processing_ms"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// EncodeFindings serializes finding counts for the JSONB findings column.
func EncodeFindings(findings map[string]int) string {
	if len(findings) == 0 {
		return "{}"
	}
	data, err := json.Marshal(findings)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// ListOptions controls paging through the audit trail.
type ListOptions struct {
	AfterID int64 `json:"after_id"`
	Limit   int   `json:"limit"`
}

// JobStats summarizes the recorded audit trail.
type JobStats struct {
	TotalJobs       int64   `json:"total_jobs"`
	TotalFindings   int64   `json:"total_findings"`
	CachedJobs      int64   `json:"cached_jobs"`
	AvgProcessingMS float64 `json:"avg_processing_ms"`
}
