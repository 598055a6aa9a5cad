package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-pagesync/cmd/internal/bootstrap"
)

const shutdownGrace = 10 * time.Second

func main() {
	if err := runServer(os.Args[1:]); err != nil {
		log.Fatalf("pagesync server: %v", err)
	}
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("pagesync-server", flag.ExitOnError)
	addr := fs.String("addr", "", "Listen address (overrides PAGESYNC_HTTP_ADDR)")
	contentDir := fs.String("content-dir", "", "Content root (overrides PAGESYNC_CONTENT_DIR)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := bootstrap.LoadEnv()
	if err != nil {
		return err
	}
	if *addr != "" {
		env.HTTPAddr = *addr
	}
	if *contentDir != "" {
		env.ContentDir = *contentDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildModule(ctx, env)
	if err != nil {
		return err
	}
	defer app.Close()

	if len(env.PollDatasources) > 0 {
		poller, err := app.Module.NewPoller(env.PollDatasources, env.PollInterval)
		if err != nil {
			return err
		}
		go func() {
			if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("poller stopped: %v", err)
			}
		}()
	}

	mux := http.NewServeMux()
	app.Module.RegisterRoutes(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	server := &http.Server{
		Addr:    env.HTTPAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", env.HTTPAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
