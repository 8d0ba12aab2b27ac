package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/leroysdeath/vgsearch/internal/catalog"
	"github.com/leroysdeath/vgsearch/internal/coordinator"
	"github.com/leroysdeath/vgsearch/internal/expand"
	"github.com/leroysdeath/vgsearch/internal/localstore"
	"github.com/leroysdeath/vgsearch/internal/protection"
	"github.com/leroysdeath/vgsearch/internal/scoring"
	"github.com/leroysdeath/vgsearch/internal/searcher"
)

const (
	// ServerName is the MCP server name.
	ServerName = "vgsearch"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the local store.
	DefaultDBPath = "~/.vgsearch"
)

// Config carries everything needed to assemble the server.
type Config struct {
	// DBPath is the directory holding the local store database.
	DBPath string

	// Remote catalog credentials. Both empty disables the remote source
	// and every search behaves as local-only.
	CatalogURL string
	ClientID   string
	Token      string

	// Optional YAML table overrides.
	FilterConfigPath string
	AliasConfigPath  string

	Logger *slog.Logger
}

// Server wraps the MCP server with the search pipeline dependencies.
type Server struct {
	mcp         *server.MCPServer
	store       *localstore.SQLiteStore
	remote      *catalog.Client
	coordinator *coordinator.Coordinator
	logger      *slog.Logger
}

// NewServer assembles the full pipeline and registers the tools.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dbPath := cfg.DBPath
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".vgsearch")
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := localstore.New(filepath.Join(dbPath, "vgsearch.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local store: %w", err)
	}

	var remote *catalog.Client
	if cfg.ClientID != "" && cfg.Token != "" {
		remote, err = catalog.NewClient(catalog.Config{
			BaseURL:  cfg.CatalogURL,
			ClientID: cfg.ClientID,
			Token:    cfg.Token,
			Logger:   logger,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize catalog client: %w", err)
		}
	} else {
		logger.Warn("no catalog credentials, searches are local-only")
	}

	expandOpts := []expand.Option{expand.WithLogger(logger)}
	if cfg.AliasConfigPath != "" {
		loaded, err := expand.LoadTables(cfg.AliasConfigPath)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to load alias tables: %w", err)
		}
		expandOpts = append(expandOpts, loaded...)
	}

	filterOpts := []protection.Option{protection.WithLogger(logger)}
	if cfg.FilterConfigPath != "" {
		tables, err := protection.LoadTables(cfg.FilterConfigPath)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to load filter tables: %w", err)
		}
		filterOpts = append(filterOpts, protection.WithTables(tables))
	}

	var remoteSource searcher.RemoteSource
	if remote != nil {
		remoteSource = remote
	}
	coord, err := coordinator.New(
		expand.New(expandOpts...),
		searcher.New(store, remoteSource, searcher.WithLogger(logger)),
		protection.New(filterOpts...),
		scoring.New(scoring.DefaultParams()),
		coordinator.WithLogger(logger),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create coordinator: %w", err)
	}

	s := &Server{
		mcp:         server.NewMCPServer(ServerName, ServerVersion),
		store:       store,
		remote:      remote,
		coordinator: coord,
		logger:      logger,
	}
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer s.Close()
	return server.ServeStdio(s.mcp)
}

// Close releases the coordinator and the local store.
func (s *Server) Close() {
	s.coordinator.Close()
	_ = s.store.Close()
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchGamesTool(), s.handleSearchGames)
	s.mcp.AddTool(getSearchStatusTool(), s.handleGetSearchStatus)
	s.mcp.AddTool(clearSearchCacheTool(), s.handleClearSearchCache)
	s.mcp.AddTool(seedGamesTool(), s.handleSeedGames)
}
