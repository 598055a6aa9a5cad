package pagesync

import "github.com/goliatone/go-pagesync/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown   = runtimeconfig.ErrStorageProviderUnknown
	ErrCacheTTLInvalid          = runtimeconfig.ErrCacheTTLInvalid
	ErrSyncTimeoutInvalid       = runtimeconfig.ErrSyncTimeoutInvalid
	ErrMarkdownCacheSizeInvalid = runtimeconfig.ErrMarkdownCacheSizeInvalid
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	SyncConfig     = runtimeconfig.SyncConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	FeedConfig     = runtimeconfig.FeedConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
