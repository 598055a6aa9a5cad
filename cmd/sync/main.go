package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-pagesync/cmd/internal/bootstrap"
	synccmd "github.com/goliatone/go-pagesync/internal/commands/sync"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runSync(os.Args[1:]); err != nil {
		log.Fatalf("pagesync sync: %v", err)
	}
}

func runSync(args []string) error {
	fs := flag.NewFlagSet("pagesync-sync", flag.ExitOnError)
	datasource := fs.String("datasource", "", "Datasource identifier to synchronize")
	contentDir := fs.String("content-dir", "", "Content root (overrides PAGESYNC_CONTENT_DIR)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *datasource == "" {
		return fmt.Errorf("datasource is required")
	}

	env, err := bootstrap.LoadEnv()
	if err != nil {
		return err
	}
	if *contentDir != "" {
		env.ContentDir = *contentDir
	}

	ctx := context.Background()
	app, err := moduleBuilder(ctx, env)
	if err != nil {
		return err
	}
	defer app.Close()

	handler := app.Module.SyncCommand()
	cmd := synccmd.SyncDatasourceCommand{DatasourceID: *datasource}
	if err := handler.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("sync %s: %w", *datasource, err)
	}

	report := handler.LastReport()
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
