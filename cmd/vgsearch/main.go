package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/leroysdeath/vgsearch/internal/localstore"
	"github.com/leroysdeath/vgsearch/internal/mcp"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("vgsearch MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", localstore.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", localstore.DriverName)
		os.Exit(0)
	}

	// Log startup info to stderr (stdout reserved for MCP protocol)
	log.SetOutput(os.Stderr)
	log.Printf("vgsearch MCP Server v%s starting...", version)
	log.Printf("Build Mode: %s, Driver: %s", localstore.BuildMode, localstore.DriverName)

	cfg := mcp.Config{
		DBPath:           os.Getenv("VGSEARCH_DB_PATH"),
		CatalogURL:       os.Getenv("VGSEARCH_CATALOG_URL"),
		ClientID:         os.Getenv("VGSEARCH_CLIENT_ID"),
		Token:            os.Getenv("VGSEARCH_CATALOG_TOKEN"),
		FilterConfigPath: os.Getenv("VGSEARCH_FILTER_CONFIG"),
		AliasConfigPath:  os.Getenv("VGSEARCH_ALIAS_CONFIG"),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = mcp.DefaultDBPath
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Println("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}

	log.Println("Server stopped")
}
