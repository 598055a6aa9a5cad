package runtimeconfig

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateStorageProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Provider = "etcd"
	if err := cfg.Validate(); !errors.Is(err, ErrStorageProviderUnknown) {
		t.Errorf("unknown storage: %v", err)
	}

	cfg.Storage.Provider = "memory"
	if err := cfg.Validate(); err != nil {
		t.Errorf("memory storage rejected: %v", err)
	}
}

func TestValidateNegativeDurations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.DefaultTTL = -time.Second
	if err := cfg.Validate(); !errors.Is(err, ErrCacheTTLInvalid) {
		t.Errorf("negative ttl: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Sync.HandlerTimeout = -time.Second
	if err := cfg.Validate(); !errors.Is(err, ErrSyncTimeoutInvalid) {
		t.Errorf("negative timeout: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Markdown.CacheSize = -1
	if err := cfg.Validate(); !errors.Is(err, ErrMarkdownCacheSizeInvalid) {
		t.Errorf("negative cache size: %v", err)
	}
}

func TestValidateLogging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Provider = ""
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingProviderRequired) {
		t.Errorf("missing provider: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingProviderUnknown) {
		t.Errorf("unknown provider: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingLevelInvalid) {
		t.Errorf("bad level: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingFormatInvalid) {
		t.Errorf("bad format: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Logging.Enabled = false
	cfg.Logging.Provider = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled logging should skip checks: %v", err)
	}
}
