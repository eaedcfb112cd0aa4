package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Redaction RedactionConfig `yaml:"redaction" mapstructure:"redaction"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Cleanup   CleanupConfig   `yaml:"cleanup" mapstructure:"cleanup"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Audit     AuditConfig     `yaml:"audit" mapstructure:"audit"`
	Security  SecurityConfig  `yaml:"security" mapstructure:"security"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port          int           `yaml:"port" mapstructure:"port"`
	ReadTimeout   time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxUploadSize int64         `yaml:"max_upload_size" mapstructure:"max_upload_size"`
}

// RedactionConfig controls the PII redaction engine
type RedactionConfig struct {
	Enabled   bool     `yaml:"enabled" mapstructure:"enabled"`
	Labels    bool     `yaml:"labels" mapstructure:"labels"`
	Detectors []string `yaml:"detectors" mapstructure:"detectors"`
	MaskGlyph string   `yaml:"mask_glyph" mapstructure:"mask_glyph"`
}

// ExtractConfig contains text extraction configuration
type ExtractConfig struct {
	DefaultLanguage string `yaml:"default_language" mapstructure:"default_language"`
	OCRSpace        struct {
		Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
		APIKey   string        `yaml:"api_key" mapstructure:"api_key"`
		Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
		Engine   int           `yaml:"engine" mapstructure:"engine"`
		Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	} `yaml:"ocr_space" mapstructure:"ocr_space"`
	LocalFallback bool `yaml:"local_fallback" mapstructure:"local_fallback"`
}

// CleanupConfig contains the optional AI text cleanup configuration
type CleanupConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	APIKey   string        `yaml:"api_key" mapstructure:"api_key"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// CacheConfig contains the Redis result cache configuration
type CacheConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	RedisURL       string        `yaml:"redis_url" mapstructure:"redis_url"`
	MaxConnections int           `yaml:"max_connections" mapstructure:"max_connections"`
	MinIdleConns   int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DefaultTTL     time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
	KeyPrefix      string        `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// AuditConfig contains the processing audit store configuration
type AuditConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

// SecurityConfig contains rate limiting configuration
type SecurityConfig struct {
	RateLimit struct {
		Enabled        bool    `yaml:"enabled" mapstructure:"enabled"`
		RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
		Burst          int     `yaml:"burst" mapstructure:"burst"`
	} `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
		Path     string `yaml:"path" mapstructure:"path"`
		MaxSize  int    `yaml:"max_size" mapstructure:"max_size"`
		MaxAge   int    `yaml:"max_age" mapstructure:"max_age"`
		Compress bool   `yaml:"compress" mapstructure:"compress"`
	} `yaml:"file" mapstructure:"file"`
}

// WebSocketConfig contains dashboard WebSocket configuration
type WebSocketConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	Path            string        `yaml:"path" mapstructure:"path"`
	Username        string        `yaml:"username" mapstructure:"username"`
	Password        string        `yaml:"password" mapstructure:"password"`
	ReadBufferSize  int           `yaml:"read_buffer_size" mapstructure:"read_buffer_size"`
	WriteBufferSize int           `yaml:"write_buffer_size" mapstructure:"write_buffer_size"`
	PingInterval    time.Duration `yaml:"ping_interval" mapstructure:"ping_interval"`
	PongTimeout     time.Duration `yaml:"pong_timeout" mapstructure:"pong_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	MaxMessageSize  int64         `yaml:"max_message_size" mapstructure:"max_message_size"`
	Events          struct {
		BroadcastDocuments   bool `yaml:"broadcast_documents" mapstructure:"broadcast_documents"`
		BroadcastDetections  bool `yaml:"broadcast_detections" mapstructure:"broadcast_detections"`
		BroadcastSystem      bool `yaml:"broadcast_system" mapstructure:"broadcast_system"`
		BroadcastConnections bool `yaml:"broadcast_connections" mapstructure:"broadcast_connections"`
	} `yaml:"events" mapstructure:"events"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:          8080,
			ReadTimeout:   60 * time.Second,
			WriteTimeout:  120 * time.Second,
			IdleTimeout:   60 * time.Second,
			MaxUploadSize: 32 << 20, // 32 MiB
		},
		Redaction: RedactionConfig{
			Enabled:   true,
			Labels:    true,
			Detectors: []string{"all"},
			MaskGlyph: "█",
		},
		Cache: CacheConfig{
			Enabled:        false,
			RedisURL:       "redis://localhost:6379/0",
			MaxConnections: 10,
			MinIdleConns:   2,
			DefaultTTL:     time.Hour,
			KeyPrefix:      "redactd",
		},
		Audit: AuditConfig{
			Enabled:         false,
			DatabaseURL:     "postgres://localhost:5432/redactd?sslmode=disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		WebSocket: WebSocketConfig{
			Enabled:         true,
			Path:            "/ws",
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingInterval:    54 * time.Second,
			PongTimeout:     60 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxMessageSize:  512,
		},
	}

	config.Logging.File.Path = "logs/redactd.log"
	config.Logging.File.MaxSize = 100 // MB
	config.Logging.File.MaxAge = 30   // days
	config.Logging.File.Compress = true

	config.Extract.DefaultLanguage = "eng"
	config.Extract.OCRSpace.Enabled = true
	config.Extract.OCRSpace.Endpoint = "https://api.ocr.space/parse/image"
	config.Extract.OCRSpace.Engine = 2
	config.Extract.OCRSpace.Timeout = 120 * time.Second
	config.Extract.LocalFallback = true

	config.Cleanup.Enabled = false
	config.Cleanup.Model = "gemini-1.5-pro-latest"
	config.Cleanup.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
	config.Cleanup.Timeout = 60 * time.Second

	config.Security.RateLimit.Enabled = true
	config.Security.RateLimit.RequestsPerSec = 5
	config.Security.RateLimit.Burst = 10

	config.WebSocket.Events.BroadcastDocuments = true
	config.WebSocket.Events.BroadcastDetections = true
	config.WebSocket.Events.BroadcastSystem = true
	config.WebSocket.Events.BroadcastConnections = true

	return config
}
