package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pandeygaura/navins-redact/internal/audit"
	"github.com/pandeygaura/navins-redact/internal/cache"
	"github.com/pandeygaura/navins-redact/internal/cleanup"
	"github.com/pandeygaura/navins-redact/internal/config"
	"github.com/pandeygaura/navins-redact/internal/events"
	"github.com/pandeygaura/navins-redact/internal/extract"
	"github.com/pandeygaura/navins-redact/internal/logger"
	"github.com/pandeygaura/navins-redact/internal/metrics"
	"github.com/pandeygaura/navins-redact/internal/redact"
	"github.com/pandeygaura/navins-redact/internal/render"
	"github.com/pandeygaura/navins-redact/internal/security"
	"github.com/pandeygaura/navins-redact/internal/web"
)

// Server is the document redaction HTTP server.
type Server struct {
	config    *config.Config
	logger    *logger.Logger
	engine    *redact.Engine
	extractor *extract.Extractor
	cleaner   cleanup.Cleaner
	renderer  *render.Renderer
	cache     *cache.ResultCache
	audit     *audit.Store
	hub       *events.Hub
	metrics   *metrics.Metrics
	limiter   *security.RateLimiter
	router    *mux.Router
	server    *http.Server
	startTime time.Time
}

// New wires the processing pipeline and HTTP routes. The cache and audit
// store are optional backends: when disabled or unreachable the server runs
// without them.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	return newServer(cfg, log, metrics.New("redactd"))
}

func newServer(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*Server, error) {
	engine, err := redact.New(cfg.Redaction, log.WithComponent("redact"))
	if err != nil {
		return nil, fmt.Errorf("failed to create redaction engine: %w", err)
	}

	server := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		engine:    engine,
		extractor: extract.New(cfg.Extract, log.WithComponent("extract")),
		cleaner:   cleanup.New(cfg.Cleanup, log.WithComponent("cleanup")),
		renderer:  render.New(cfg.Redaction.MaskGlyph, log.WithComponent("render")),
		hub:       events.NewHub(cfg.WebSocket, log.WithComponent("events")),
		metrics:   m,
		limiter:   security.NewRateLimiter(cfg.Security),
		router:    mux.NewRouter(),
	}

	if cfg.Cache.Enabled {
		resultCache, err := cache.New(cfg.Cache, log.WithComponent("cache"))
		if err != nil {
			log.Warn("Result cache unavailable, continuing without it", zap.Error(err))
		} else {
			server.cache = resultCache
		}
	}

	if cfg.Audit.Enabled {
		store, err := audit.NewStore(cfg.Audit, log.WithComponent("audit"))
		if err != nil {
			log.Warn("Audit store unavailable, continuing without it", zap.Error(err))
		} else {
			server.audit = store
		}
	}

	server.setupRoutes()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	s.router.HandleFunc("/", web.ServeDashboard).Methods("GET")
	s.router.HandleFunc("/dashboard", web.ServeDashboard).Methods("GET")

	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.handleWebSocket).Methods("GET")
	}

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/process", s.handleProcess).Methods("POST")
	api.HandleFunc("/redact", s.handleRedact).Methods("POST")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
}

// Start starts the HTTP server and the dashboard event hub.
func (s *Server) Start() error {
	s.logger.Info("Starting document redaction server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("redaction_enabled", s.config.Redaction.Enabled),
		zap.Bool("cleanup_enabled", s.cleaner.Enabled()),
		zap.Bool("cache_enabled", s.cache != nil),
		zap.Bool("audit_enabled", s.audit != nil),
	)

	s.startTime = time.Now()
	go s.hub.Run()
	go s.broadcastSystemStatus()
	s.limiter.StartCleanupRoutine()

	return s.server.ListenAndServe()
}

// broadcastSystemStatus periodically pushes a status snapshot to dashboard
// clients and keeps the connected-clients gauge current.
func (s *Server) broadcastSystemStatus() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		hubStats := s.hub.GetStats()
		s.metrics.ActiveDashboards.Set(float64(hubStats.ActiveConnections))

		status := events.SystemStatusEvent{
			Status:           "healthy",
			Uptime:           time.Since(s.startTime).Round(time.Second).String(),
			ConnectedClients: int(hubStats.ActiveConnections),
		}
		if s.audit != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if jobStats, err := s.audit.GetStats(ctx); err == nil {
				status.TotalDocuments = jobStats.TotalJobs
				status.TotalFindings = jobStats.TotalFindings
			}
			cancel()
		}

		s.hub.Broadcast(events.Event{
			Type:      events.EventTypeSystemStatus,
			Timestamp: time.Now(),
			Data:      status,
		})
	}
}

// Stop gracefully stops the HTTP server and closes backend connections.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping document redaction server")

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("Failed to close result cache", zap.Error(err))
		}
	}
	if s.audit != nil {
		if err := s.audit.Close(); err != nil {
			s.logger.Warn("Failed to close audit store", zap.Error(err))
		}
	}

	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleInfo handles info requests.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{
		"name":"navins-redact",
		"version":"0.1.0",
		"redaction_enabled":%t,
		"cleanup_enabled":%t,
		"label_rules":%d,
		"pattern_detectors":%d
	}`, s.config.Redaction.Enabled, s.cleaner.Enabled(), s.engine.LabelRuleCount(), len(s.engine.EnabledPatterns()))
}

// handleWebSocket hands dashboard connections to the event hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.HandleWebSocket(w, r)
}

// Hub returns the event hub for broadcasting.
func (s *Server) Hub() *events.Hub {
	return s.hub
}
