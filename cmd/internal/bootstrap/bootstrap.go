package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	pagesync "github.com/goliatone/go-pagesync"
	"github.com/goliatone/go-pagesync/internal/source/markdownfs"
)

// Env captures process configuration for the pagesync binaries. Values come
// from PAGESYNC_* environment variables, with a .env file loaded first when
// present.
type Env struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	BaseURL  string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	StorageProvider string `envconfig:"STORAGE_PROVIDER" default:"bun"`
	DBDriver        string `envconfig:"DB_DRIVER" default:"sqlite3"`
	DBDSN           string `envconfig:"DB_DSN" default:"file:pagesync.db?_fk=1"`

	ContentDir     string `envconfig:"CONTENT_DIR" default:"content"`
	ContentPattern string `envconfig:"CONTENT_PATTERN" default:"*.md"`
	SourceName     string `envconfig:"SOURCE_NAME" default:"content"`

	TombstoneMissing bool   `envconfig:"TOMBSTONE_MISSING" default:"false"`
	FeedTitle        string `envconfig:"FEED_TITLE" default:"Pages"`

	PollDatasources []string      `envconfig:"POLL_DATASOURCES"`
	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"1m"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
}

// LoadEnv reads a .env file when one exists and then processes PAGESYNC_*
// environment variables. Shell-set variables win over the file.
func LoadEnv() (*Env, error) {
	_ = godotenv.Load(".env")

	env := new(Env)
	if err := envconfig.Process("PAGESYNC", env); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return env, nil
}

// Module bundles a configured pagesync module with its cleanup hook.
type Module struct {
	Module *pagesync.Module
	Env    *Env

	db *bun.DB
}

// Close releases the database handle when one was opened.
func (m *Module) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// BuildModule wires a pagesync module from environment configuration: it
// opens the database, applies migrations, and mounts the content directory
// as a markdown source.
func BuildModule(ctx context.Context, env *Env) (*Module, error) {
	cfg := pagesync.DefaultConfig()
	cfg.BaseURL = env.BaseURL
	cfg.Storage.Provider = env.StorageProvider
	cfg.Sync.TombstoneMissing = env.TombstoneMissing
	cfg.Feed.Title = env.FeedTitle
	cfg.Logging.Level = env.LogLevel
	cfg.Logging.Format = env.LogFormat

	source := markdownfs.New(os.DirFS(env.ContentDir), markdownfs.Config{
		Name:    env.SourceName,
		Pattern: env.ContentPattern,
	})

	opts := []pagesync.Option{pagesync.WithSource(source)}

	var db *bun.DB
	if !strings.EqualFold(strings.TrimSpace(env.StorageProvider), "memory") {
		opened, err := openDatabase(env)
		if err != nil {
			return nil, err
		}
		if err := pagesync.RunMigrations(ctx, opened); err != nil {
			_ = opened.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		db = opened
		opts = append(opts, pagesync.WithDB(db))
	}

	module, err := pagesync.New(cfg, opts...)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("initialise pagesync module: %w", err)
	}

	return &Module{Module: module, Env: env, db: db}, nil
}

func openDatabase(env *Env) (*bun.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(env.DBDriver))
	switch driver {
	case "sqlite3", "sqlite":
		sqlDB, err := sql.Open("sqlite3", env.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case "postgres", "postgresql":
		sqlDB, err := sql.Open("postgres", env.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", env.DBDriver)
	}
}
