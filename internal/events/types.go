package events

import (
	"time"

	"github.com/pandeygaura/navins-redact/internal/redact"
)

// EventType identifies a dashboard event category.
type EventType string

const (
	// EventTypeDocumentProcessed is emitted after a document finishes processing
	EventTypeDocumentProcessed EventType = "document_processed"
	// EventTypePIIDetection is emitted when redaction finds PII in a document
	EventTypePIIDetection EventType = "pii_detection"
	// EventTypeSystemStatus carries periodic system status snapshots
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection reports dashboard clients connecting and disconnecting
	EventTypeConnection EventType = "connection"
)

// Event is a message pushed to dashboard clients.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// DocumentProcessedEvent describes one completed processing job.
type DocumentProcessedEvent struct {
	RequestID    string `json:"request_id"`
	Filename     string `json:"filename"`
	Kind         string `json:"kind"`
	UseAI        bool   `json:"use_ai"`
	Cached       bool   `json:"cached"`
	FindingCount int    `json:"finding_count"`
	ProcessingMS int64  `json:"processing_ms"`
}

// PIIDetectionEvent describes the PII found in one document. Only entity
// types and counts are included, never the matched values.
type PIIDetectionEvent struct {
	RequestID     string           `json:"request_id"`
	Filename      string           `json:"filename"`
	Findings      []redact.Finding `json:"findings"`
	TotalFindings int              `json:"total_findings"`
}

// SystemStatusEvent is a periodic status snapshot.
type SystemStatusEvent struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	TotalDocuments   int64  `json:"total_documents"`
	TotalFindings    int64  `json:"total_findings"`
	ConnectedClients int    `json:"connected_clients"`
}

// ConnectionEvent reports a dashboard client connecting or disconnecting.
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected", "disconnected"
	ClientID string `json:"client_id"`
	ClientIP string `json:"client_ip"`
	Message  string `json:"message,omitempty"`
}

// ClientMessage is a message received from a dashboard client.
type ClientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SubscriptionRequest narrows the event types a client receives.
type SubscriptionRequest struct {
	Events []EventType `json:"events"`
}
