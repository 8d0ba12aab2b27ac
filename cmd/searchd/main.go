// Command searchd serves the coordinated game search over HTTP for the
// web application frontend.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/leroysdeath/vgsearch/internal/catalog"
	"github.com/leroysdeath/vgsearch/internal/coordinator"
	"github.com/leroysdeath/vgsearch/internal/expand"
	"github.com/leroysdeath/vgsearch/internal/localstore"
	"github.com/leroysdeath/vgsearch/internal/protection"
	"github.com/leroysdeath/vgsearch/internal/scoring"
	"github.com/leroysdeath/vgsearch/internal/searcher"
)

const defaultAddr = ":8080"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("searchd failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	dbPath := os.Getenv("VGSEARCH_DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dbPath = filepath.Join(home, ".vgsearch")
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return err
	}

	store, err := localstore.New(filepath.Join(dbPath, "vgsearch.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	var remote searcher.RemoteSource
	clientID := os.Getenv("VGSEARCH_CLIENT_ID")
	token := os.Getenv("VGSEARCH_CATALOG_TOKEN")
	if clientID != "" && token != "" {
		client, err := catalog.NewClient(catalog.Config{
			BaseURL:  os.Getenv("VGSEARCH_CATALOG_URL"),
			ClientID: clientID,
			Token:    token,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		remote = client
	} else {
		logger.Warn("no catalog credentials, searches are local-only")
	}

	expandOpts := []expand.Option{expand.WithLogger(logger)}
	if path := os.Getenv("VGSEARCH_ALIAS_CONFIG"); path != "" {
		loaded, err := expand.LoadTables(path)
		if err != nil {
			return err
		}
		expandOpts = append(expandOpts, loaded...)
	}

	filterOpts := []protection.Option{protection.WithLogger(logger)}
	if path := os.Getenv("VGSEARCH_FILTER_CONFIG"); path != "" {
		tables, err := protection.LoadTables(path)
		if err != nil {
			return err
		}
		filterOpts = append(filterOpts, protection.WithTables(tables))
	}

	coord, err := coordinator.New(
		expand.New(expandOpts...),
		searcher.New(store, remote, searcher.WithLogger(logger)),
		protection.New(filterOpts...),
		scoring.New(scoring.DefaultParams()),
		coordinator.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer coord.Close()

	api := &apiServer{
		coordinator: coord,
		store:       store,
		logger:      logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", api.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", api.handleSearch)
		r.Get("/search/status", api.handleStatus)
		r.Post("/search/cache/clear", api.handleClearCache)
		r.Post("/games", api.handleSeed)
	})

	addr := os.Getenv("VGSEARCH_HTTP_ADDR")
	if addr == "" {
		addr = defaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("searchd listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
