package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pandeygaura/navins-redact/internal/audit"
	"github.com/pandeygaura/navins-redact/internal/cache"
	"github.com/pandeygaura/navins-redact/internal/events"
	"github.com/pandeygaura/navins-redact/internal/extract"
	"github.com/pandeygaura/navins-redact/internal/redact"
	"github.com/pandeygaura/navins-redact/internal/render"
)

type errorResponse struct {
	Error string `json:"error"`
}

type redactRequest struct {
	Text string `json:"text"`
}

type redactResponse struct {
	Redacted      string           `json:"redacted"`
	Findings      []redact.Finding `json:"findings"`
	TotalFindings int              `json:"total_findings"`
}

type processResponse struct {
	RequestID     string           `json:"request_id"`
	Filename      string           `json:"filename"`
	Kind          string           `json:"kind"`
	UseAI         bool             `json:"use_ai"`
	Cached        bool             `json:"cached"`
	Findings      []redact.Finding `json:"findings"`
	TotalFindings int              `json:"total_findings"`
	ProcessingMS  int64            `json:"processing_ms"`
	RedactedText  string           `json:"redacted_text"`
	DOCXBase64    string           `json:"docx_base64"`
	PDFBase64     string           `json:"pdf_base64"`
	ZIPBase64     string           `json:"zip_base64"`
}

type statsResponse struct {
	Cache     *cache.Stats    `json:"cache,omitempty"`
	Audit     *audit.JobStats `json:"audit,omitempty"`
	Dashboard events.HubStats `json:"dashboard"`
}

// handleProcess runs the full pipeline for an uploaded document: extract,
// optional AI cleanup, redaction, and rendering into DOCX and PDF.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := getRequestID(r.Context())
	log := s.logger.WithRequestID(requestID)

	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadSize)
	if err := r.ParseMultipartForm(s.config.Server.MaxUploadSize); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("Failed to read upload", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	if len(data) == 0 {
		s.writeError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}

	useAI, _ := strconv.ParseBool(r.FormValue("use_ai"))
	language := r.FormValue("language")
	format := r.FormValue("response")
	if format == "" {
		format = "zip"
	}
	if format != "zip" && format != "json" {
		s.writeError(w, http.StatusBadRequest, "response must be zip or json")
		return
	}

	kind := extract.DetectKind(header.Filename)
	if kind == extract.KindUnknown {
		s.metrics.DocumentsProcessed.WithLabelValues("unknown", "rejected").Inc()
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type: %s", header.Filename))
		return
	}

	var (
		redacted string
		findings []redact.Finding
		cached   bool
	)

	if s.cache != nil {
		if hit := s.cache.Lookup(r.Context(), data, useAI, language); hit != nil {
			s.metrics.CacheLookups.WithLabelValues("hit").Inc()
			redacted = hit.Redacted
			findings = findingsFromMap(hit.Findings)
			cached = true
		} else {
			s.metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	if !cached {
		extractStart := time.Now()
		text, err := s.extractor.Extract(r.Context(), data, header.Filename, language)
		s.metrics.ObserveExtract(time.Since(extractStart))
		if err != nil {
			s.metrics.DocumentsProcessed.WithLabelValues(string(kind), "rejected").Inc()
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(text) == "" {
			s.metrics.DocumentsProcessed.WithLabelValues(string(kind), "no_text").Inc()
			s.writeError(w, http.StatusUnprocessableEntity, "no text could be extracted from the document")
			return
		}

		if useAI && s.cleaner.Enabled() {
			cleaned, err := s.cleaner.Clean(r.Context(), text)
			if err != nil {
				log.Warn("AI cleanup failed, using raw text", zap.Error(err))
			}
			text = cleaned
		}

		result := s.engine.Process(text)
		redacted = result.Redacted
		findings = result.Findings

		if s.cache != nil {
			entry := &cache.CachedResult{
				Redacted:     redacted,
				Findings:     findingsToMap(findings),
				Cleaned:      useAI && s.cleaner.Enabled(),
				SourceKind:   string(kind),
				ProcessingMS: time.Since(start).Milliseconds(),
			}
			if err := s.cache.Store(r.Context(), data, useAI, language, entry); err != nil {
				log.Warn("Failed to cache result", zap.Error(err))
			}
		}
	}

	processingMS := time.Since(start).Milliseconds()
	totalFindings := sumFindings(findings)

	s.metrics.DocumentsProcessed.WithLabelValues(string(kind), "success").Inc()
	for _, finding := range findings {
		s.metrics.PIIFindings.WithLabelValues(finding.EntityType).Add(float64(finding.Count))
	}
	s.metrics.ObserveProcessing(time.Since(start))

	if s.audit != nil {
		job := &audit.Job{
			RequestID:    requestID,
			Filename:     header.Filename,
			Kind:         string(kind),
			UseAI:        useAI,
			Cached:       cached,
			Findings:     audit.EncodeFindings(findingsToMap(findings)),
			FindingCount: totalFindings,
			ProcessingMS: processingMS,
		}
		if err := s.audit.Record(r.Context(), job); err != nil {
			log.Warn("Failed to record audit entry", zap.Error(err))
		}
	}

	s.hub.Broadcast(events.Event{
		Type:      events.EventTypeDocumentProcessed,
		Timestamp: time.Now(),
		RequestID: requestID,
		Data: events.DocumentProcessedEvent{
			RequestID:    requestID,
			Filename:     header.Filename,
			Kind:         string(kind),
			UseAI:        useAI,
			Cached:       cached,
			FindingCount: totalFindings,
			ProcessingMS: processingMS,
		},
	})
	if totalFindings > 0 {
		s.hub.Broadcast(events.Event{
			Type:      events.EventTypePIIDetection,
			Timestamp: time.Now(),
			RequestID: requestID,
			Data: events.PIIDetectionEvent{
				RequestID:     requestID,
				Filename:      header.Filename,
				Findings:      findings,
				TotalFindings: totalFindings,
			},
		})
	}

	docxBytes, err := s.renderer.DOCX(redacted)
	if err != nil {
		log.Error("DOCX rendering failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to render document")
		return
	}
	pdfBytes, err := s.renderer.PDF(redacted)
	if err != nil {
		log.Error("PDF rendering failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to render document")
		return
	}

	base := uploadBaseName(header.Filename)

	bundle, err := s.renderer.Bundle(base, docxBytes, pdfBytes)
	if err != nil {
		log.Error("Bundle rendering failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to render document")
		return
	}

	if format == "json" {
		s.writeJSON(w, http.StatusOK, processResponse{
			RequestID:     requestID,
			Filename:      header.Filename,
			Kind:          string(kind),
			UseAI:         useAI,
			Cached:        cached,
			Findings:      findings,
			TotalFindings: totalFindings,
			ProcessingMS:  processingMS,
			RedactedText:  redacted,
			DOCXBase64:    base64.StdEncoding.EncodeToString(docxBytes),
			PDFBase64:     base64.StdEncoding.EncodeToString(pdfBytes),
			ZIPBase64:     base64.StdEncoding.EncodeToString(bundle),
		})
		return
	}

	_, _, zipName := render.BundleNames(base)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", zipName))
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(bundle); err != nil {
		log.Warn("Failed to write response", zap.Error(err))
	}
}

// handleRedact redacts raw text without document rendering.
func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadSize)

	var req redactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	result := s.engine.Process(req.Text)

	for _, finding := range result.Findings {
		s.metrics.PIIFindings.WithLabelValues(finding.EntityType).Add(float64(finding.Count))
	}

	s.writeJSON(w, http.StatusOK, redactResponse{
		Redacted:      result.Redacted,
		Findings:      result.Findings,
		TotalFindings: result.TotalFindings(),
	})
}

// handleStats reports backend and dashboard statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	response := statsResponse{
		Dashboard: s.hub.GetStats(),
	}

	if s.cache != nil {
		if stats, err := s.cache.GetStats(r.Context()); err == nil {
			response.Cache = stats
		}
	}
	if s.audit != nil {
		if stats, err := s.audit.GetStats(r.Context()); err == nil {
			response.Audit = stats
		}
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// uploadBaseName strips any path and the extension from an upload filename.
func uploadBaseName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func findingsToMap(findings []redact.Finding) map[string]int {
	counts := make(map[string]int, len(findings))
	for _, finding := range findings {
		counts[finding.EntityType] += finding.Count
	}
	return counts
}

// findingsFromMap rebuilds a finding list in a stable order.
func findingsFromMap(counts map[string]int) []redact.Finding {
	entities := make([]string, 0, len(counts))
	for entity := range counts {
		entities = append(entities, entity)
	}
	sort.Strings(entities)

	findings := make([]redact.Finding, 0, len(entities))
	for _, entity := range entities {
		findings = append(findings, redact.Finding{EntityType: entity, Count: counts[entity]})
	}
	return findings
}

func sumFindings(findings []redact.Finding) int {
	total := 0
	for _, finding := range findings {
		total += finding.Count
	}
	return total
}
