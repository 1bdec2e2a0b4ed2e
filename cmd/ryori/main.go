// Package main is the Ryori CLI entry point.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/hyperjump/ryori/internal/catalog"
	"github.com/hyperjump/ryori/internal/chart"
	"github.com/hyperjump/ryori/internal/cli"
	"github.com/hyperjump/ryori/internal/config"
	"github.com/hyperjump/ryori/internal/embedding"
	"github.com/hyperjump/ryori/internal/importer"
	"github.com/hyperjump/ryori/internal/models"
	"github.com/hyperjump/ryori/internal/recommend"
	"github.com/hyperjump/ryori/internal/server"
	"github.com/hyperjump/ryori/internal/storage"
	"github.com/hyperjump/ryori/internal/vector"
	"github.com/hyperjump/ryori/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/ryori/config.yaml"

const defaultServerURL = "http://localhost:8080"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory takes precedence if it exists, so "ryori server" run from a
// project checkout uses the project's config. When no file exists at the default
// path either, built-in defaults are used.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "recommend":
		runRecommend()
	case "import":
		runImport()
	case "export":
		runExport()
	case "status":
		runStatus()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("ryori version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads the config and creates the logger shared by every local command.
func setup(configPath string, debug bool) (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := setup(*configPath, *debug)
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("source", cfg.Storage.Source),
		zap.String("provider", cfg.Embedding.Provider),
	)

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Service, cfg, version, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printRecommendUsage prints recommend subcommand usage.
func printRecommendUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: ryori recommend [flags] <preferences>\n\n")
	fmt.Fprintf(fs.Output(), "Preferences are all remaining arguments joined by spaces; quoting is optional.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  ryori recommend spicy vegetarian noodles
  ryori recommend --k 10 "low carb breakfast"
  ryori recommend --output json creamy soup
  ryori recommend --server "" quick dinner     # load the snapshot locally
`)
}

// buildPreferences joins all positional args with spaces so multi-word preferences
// work the same with or without shell quoting.
func buildPreferences(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves flags (and their values) that appear after the positional
// arguments to the front so that flag.Parse sees them. The flag package stops at
// the first non-flag argument, so "ryori recommend soup --k 3" would otherwise
// leave --k unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for local mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = load the snapshot locally)")
	k := fs.Int("k", 0, "number of recommendations (0 = configured default)")
	outputFormat := fs.String("output", "text", "output format: text, compact or json")
	fs.Usage = func() { printRecommendUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	preferences := buildPreferences(fs.Args())
	if preferences == "" {
		printRecommendUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	req := &models.RecommendRequest{Preferences: preferences, K: *k}
	var response *models.RecommendResponse
	if *serverURL != "" {
		response, err = recommendViaHTTP(*serverURL, req)
	} else {
		response, err = recommendLocal(*configPath, req)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Recommend failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRecommendations(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func recommendLocal(configPath string, req *models.RecommendRequest) (*models.RecommendResponse, error) {
	cfg, _, logger := setup(configPath, false)
	defer logger.Sync()
	if err := req.Validate(cfg.Recommend.DefaultK, cfg.Recommend.MaxK); err != nil {
		return nil, err
	}
	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	start := time.Now()
	recs, err := components.Service.Recommend(ctx, req.Preferences, req.K)
	if err != nil {
		return nil, err
	}
	return &models.RecommendResponse{
		Recommendations: recs,
		QueryTime:       time.Since(start).Milliseconds(),
		Preferences:     req.Preferences,
	}, nil
}

var httpClient = &http.Client{Timeout: 60 * time.Second}

func recommendViaHTTP(serverURL string, req *models.RecommendRequest) (*models.RecommendResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	resp, err := httpClient.Post(strings.TrimRight(serverURL, "/")+"/api/v1/recommend", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out models.RecommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	sheet := fs.String("sheet", "", "worksheet name (default: first sheet)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() != 1 {
		fmt.Println("Usage: ryori import [--sheet name] <recipes.xlsx>")
		os.Exit(1)
	}
	cfg, _, logger := setup(*configPath, *debug)
	defer logger.Sync()

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		logger.Fatal("Failed to open workbook", zap.Error(err))
	}
	items, err := importer.ReadRecipes(f, *sheet)
	_ = f.Close()
	if err != nil {
		logger.Fatal("Failed to read recipes", zap.String("path", fs.Arg(0)), zap.Error(err))
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer store.Close()

	factory, err := embedding.NewFactory(cfg.Embedding, logger)
	if err != nil {
		logger.Fatal("Failed to configure embedder", zap.Error(err))
	}
	embedder := embedding.NewLazy(factory, cfg.Embedding.Dimensions, logger)
	defer embedder.Close()

	res, err := importer.New(embedder, store, importer.WithLogger(logger)).Import(context.Background(), items)
	if err != nil {
		logger.Fatal("Import failed", zap.Int("imported", res.Imported), zap.Error(err))
	}
	fmt.Printf("Imported %d recipes (%d replaced) into %s\n", res.Imported, res.Replaced, cfg.Storage.DatabasePath)
}

func runExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	out := fs.String("out", "", "snapshot file to write (default: storage.snapshot_path)")
	_ = fs.Parse(os.Args[2:])

	cfg, _, logger := setup(*configPath, false)
	defer logger.Sync()
	path := *out
	if path == "" {
		path = cfg.Storage.SnapshotPath
	}
	if cfg.Storage.Source == config.SourceFile && path == cfg.Storage.SnapshotPath {
		logger.Fatal("Refusing to overwrite the snapshot file being read", zap.String("path", path))
	}

	ctx := context.Background()
	source, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to open source", zap.Error(err))
	}
	defer source.Close()
	snap, err := source.LoadSnapshot(ctx)
	if err != nil {
		logger.Fatal("Failed to load snapshot", zap.Error(err))
	}
	store, err := vector.Build(snap.Embeddings, vector.WithLogger(logger))
	if err != nil {
		logger.Fatal("Invalid embeddings", zap.Error(err))
	}
	if err := store.Save(path); err != nil {
		logger.Fatal("Failed to write snapshot", zap.Error(err))
	}
	fmt.Printf("Exported %d embeddings (%d dimensions) to %s\n", store.Len(), store.Dimensions(), path)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for local mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = load the snapshot locally)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status *models.Status
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = res
	} else {
		cfg, _, logger := setup(*configPath, false)
		defer logger.Sync()
		components, err := initializeComponents(context.Background(), cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		st := components.Service.Status()
		st.Provider = cfg.Embedding.Provider
		st.Version = version
		if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.SnapshotPath); err == nil {
			st.DiskUsageBytes = diskBytes
		}
		status = &st
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		cli.WriteStatus(os.Stdout, status)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*models.Status, error) {
	resp, err := httpClient.Get(strings.TrimRight(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s models.Status
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("config", defaultConfigPath, "config file to write")
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(os.Args[2:])

	if _, err := os.Stat(*path); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", *path)
		os.Exit(1)
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	if err := config.Save(*path, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", *path)
}

// Components holds the objects built from a snapshot.
type Components struct {
	Source   storage.Source
	Embedder *embedding.Lazy
	Store    *vector.Store
	Catalog  *catalog.Repository
	Service  *recommend.Service
}

// Close releases the embedder and the snapshot source.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Source != nil {
		_ = c.Source.Close()
	}
}

// initializeComponents loads the snapshot once and wires the recommendation service.
// The encoder is not loaded until the first request needs it.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	source, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot source: %w", err)
	}
	c := &Components{Source: source}

	snap, err := source.LoadSnapshot(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	c.Store, err = vector.Build(snap.Embeddings, vector.WithLogger(logger))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to build vector store: %w", err)
	}
	c.Catalog, err = catalog.Build(snap.Items, catalog.WithLogger(logger))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	logger.Info("snapshot loaded",
		zap.Int("embeddings", c.Store.Len()),
		zap.Int("items", c.Catalog.Len()),
		zap.Int("dimensions", c.Store.Dimensions()),
	)

	dims := cfg.Embedding.Dimensions
	if c.Store.Dimensions() > 0 {
		dims = c.Store.Dimensions()
	}
	factory, err := embedding.NewFactory(cfg.Embedding, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Embedder = embedding.NewLazy(factory, dims, logger)

	renderer := chart.NewBarRenderer(
		chart.WithSize(cfg.Chart.Width, cfg.Chart.Height),
		chart.WithTitle(cfg.Chart.Title),
	)
	enricher := recommend.NewEnricher(c.Catalog, renderer, &cfg.Recommend, recommend.WithLogger(logger))
	c.Service = recommend.NewService(c.Embedder, c.Store, enricher, &cfg.Recommend, recommend.WithLogger(logger))
	return c, nil
}

func printUsage() {
	fmt.Println(`ryori - Semantic recipe recommender

Usage:
  ryori server [flags]                  Start the HTTP server
  ryori recommend [flags] <preferences> Recommend recipes for free-text preferences
  ryori import [flags] <recipes.xlsx>   Embed recipes from a spreadsheet into the database
  ryori export [flags]                  Write the embeddings to a snapshot file
  ryori status [flags]                  Show snapshot and encoder status
  ryori init [flags]                    Write a default config file
  ryori version                         Show version
  ryori help                            Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/ryori/config.yaml)
  --debug            Enable debug logging

Recommend Flags:
  --config string    Config file path (for local mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" to load the snapshot locally.
  --k int            Number of recommendations (default from config)
  --output string    Output format: text, compact or json (default: text)

Import Flags:
  --config string    Config file path
  --sheet string     Worksheet name (default: first sheet)

Export Flags:
  --config string    Config file path
  --out string       Snapshot file to write (default: storage.snapshot_path)

Status Flags:
  --config string    Config file path (for local mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" for local mode.
  --output string    Output format: text or json (default: text)

Init Flags:
  --config string    Config file to write
  --force            Overwrite an existing file

Examples:
  ryori server
  ryori recommend spicy vegetarian noodles
  ryori recommend --k 3 --output json "light summer salad"
  ryori import --sheet Recipes recipes.xlsx
  ryori export --out embeddings.bin
  ryori status --output json`)
}
