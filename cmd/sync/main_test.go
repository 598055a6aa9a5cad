package main

import (
	"context"
	"testing"

	pagesync "github.com/goliatone/go-pagesync"
	"github.com/goliatone/go-pagesync/cmd/internal/bootstrap"
	"github.com/goliatone/go-pagesync/internal/source"
	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

func newMemoryModule(t *testing.T) *pagesync.Module {
	t.Helper()

	cfg := pagesync.DefaultConfig()
	cfg.Storage.Provider = "memory"
	cfg.Logging.Enabled = false

	content := "# Hello\n"
	records := []interfaces.ExternalRecord{{
		PageID:       "pg_1",
		DatasourceID: "tenant-a",
		Title:        "Hello",
		Slug:         "hello",
		Content:      &content,
	}}

	module, err := pagesync.New(cfg,
		pagesync.WithSource(source.NewStaticSource("fixture", records, 0)),
	)
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	return module
}

func TestRunSyncDispatchesCommand(t *testing.T) {
	module := newMemoryModule(t)

	original := moduleBuilder
	defer func() { moduleBuilder = original }()
	moduleBuilder = func(ctx context.Context, env *bootstrap.Env) (*bootstrap.Module, error) {
		return &bootstrap.Module{Module: module, Env: env}, nil
	}

	if err := runSync([]string{"-datasource", "tenant-a"}); err != nil {
		t.Fatalf("runSync: %v", err)
	}

	report := module.SyncCommand().LastReport()
	if report == nil || report.Created != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestRunSyncRequiresDatasource(t *testing.T) {
	if err := runSync(nil); err == nil {
		t.Fatal("expected missing datasource error")
	}
}
