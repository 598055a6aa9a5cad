package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrStorageProviderUnknown = errors.New("pagesync config: storage provider is invalid")
var ErrCacheTTLInvalid = errors.New("pagesync config: cache TTL must be zero or positive")
var ErrSyncTimeoutInvalid = errors.New("pagesync config: sync timeout must be zero or positive")
var ErrMarkdownCacheSizeInvalid = errors.New("pagesync config: markdown cache size must be zero or positive")
var ErrLoggingProviderRequired = errors.New("pagesync config: logging provider is required when logging is enabled")
var ErrLoggingProviderUnknown = errors.New("pagesync config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("pagesync config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("pagesync config: logging format is invalid")

// Config aggregates the engine's toggles and adapter bindings. Fields use
// simple types so host applications can populate them from any source.
type Config struct {
	// BaseURL roots generated links in feeds and API payloads.
	BaseURL  string
	Storage  StorageConfig
	Cache    CacheConfig
	Sync     SyncConfig
	Markdown MarkdownConfig
	Feed     FeedConfig
	HTTP     HTTPConfig
	Logging  LoggingConfig
	// RecordSchema optionally gates raw records with a JSON schema before
	// they are transformed. Nil disables the gate.
	RecordSchema map[string]any
}

// StorageConfig selects the page store backend.
type StorageConfig struct {
	// Provider is "bun" for a relational store or "memory" for in-process.
	Provider string
}

// CacheConfig captures repository cache behaviour.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// SyncConfig shapes reconciliation behaviour.
type SyncConfig struct {
	// TombstoneMissing unpublishes stored pages absent from full-set fetches.
	TombstoneMissing bool
	// UntitledPlaceholder substitutes for records synced without a title.
	UntitledPlaceholder string
	// HandlerTimeout bounds command-dispatched sync runs. Zero disables it.
	HandlerTimeout time.Duration
}

// MarkdownConfig shapes rendering of stored content.
type MarkdownConfig struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
	Sanitize   bool
	// CacheSize bounds the render memo. Zero uses the renderer default.
	CacheSize int
}

// FeedConfig shapes Atom feed documents.
type FeedConfig struct {
	Title string
}

// HTTPConfig shapes the HTTP API surface.
type HTTPConfig struct {
	BasePath string
}

// LoggingConfig wires the logging provider.
type LoggingConfig struct {
	Enabled   bool
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Storage: StorageConfig{
			Provider: "bun",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Sync: SyncConfig{
			UntitledPlaceholder: "Untitled",
			HandlerTimeout:      30 * time.Second,
		},
		Markdown: MarkdownConfig{
			Extensions: []string{"gfm", "linkify", "tasklist"},
		},
		Feed: FeedConfig{
			Title: "Pages",
		},
		HTTP: HTTPConfig{
			BasePath: "/api",
		},
		Logging: LoggingConfig{
			Enabled:  true,
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Validate checks cross-field consistency.
func (cfg Config) Validate() error {
	if provider := normalizeToken(cfg.Storage.Provider); provider != "" && !isSupportedStorage(provider) {
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}
	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Sync.HandlerTimeout < 0 {
		return ErrSyncTimeoutInvalid
	}
	if cfg.Markdown.CacheSize < 0 {
		return ErrMarkdownCacheSizeInvalid
	}
	if cfg.Logging.Enabled {
		provider := normalizeToken(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedStorage(provider string) bool {
	switch provider {
	case "bun", "memory":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
