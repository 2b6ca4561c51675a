package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tidbyt.dev/tram"
	"tidbyt.dev/tram/config"
	"tidbyt.dev/tram/downloader"
	"tidbyt.dev/tram/metrics"
	"tidbyt.dev/tram/storage"
	"tidbyt.dev/tram/widget"
)

var rootCmd = &cobra.Command{
	Use:          "tram",
	Short:        "Tram arrivals tool",
	Long:         "Resolves upcoming tram arrivals from GTFS and GTFS-RT feeds",
	SilenceUsage: true,
}

var (
	configPath  string
	staticURL   string
	realtimeURL string
	headers     []string
	backend     string
	directory   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&staticURL, "static-url", "", "", "GTFS Static URL")
	rootCmd.PersistentFlags().StringVarP(&realtimeURL, "realtime-url", "", "", "GTFS Realtime URL")
	rootCmd.PersistentFlags().StringSliceVarP(
		&headers,
		"header",
		"",
		[]string{},
		"GTFS HTTP header (shared between static and realtime)",
	)
	rootCmd.PersistentFlags().StringVarP(&backend, "storage", "", "", "Widget storage backend (memory, sqlite, postgres)")
	rootCmd.PersistentFlags().StringVarP(&directory, "directory", "", "", "Directory for the sqlite database")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func parseHeaders(headers []string) (map[string]string, error) {
	parsed := map[string]string{}
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("'%s' is not on form <key>:<value>", header)
		}
		parsed[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return parsed, nil
}

// Config file values, overridden by any flags given, and validated
// once merged.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Read(configPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	if staticURL != "" {
		cfg.Feed.StaticURL = staticURL
	}
	if realtimeURL != "" {
		cfg.Feed.RealtimeURL = realtimeURL
	}
	if backend != "" {
		cfg.Storage.Backend = backend
	}
	if directory != "" {
		cfg.Storage.Directory = directory
	}

	parsed, err := parseHeaders(headers)
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid header: %w", err)
	}
	if cfg.Feed.Headers == nil {
		cfg.Feed.Headers = map[string]string{}
	}
	for k, v := range parsed {
		cfg.Feed.Headers[k] = v
	}

	err = cfg.Validate()
	if err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func newManager(cfg config.Config, m *metrics.Metrics) *tram.Manager {
	manager := tram.NewManager(cfg.Feed.StaticURL, cfg.Feed.RealtimeURL)
	manager.Headers = cfg.Feed.Headers
	manager.StaticTimeout = cfg.Feed.StaticTimeout
	manager.StaticMaxSize = cfg.Feed.StaticMaxSize
	manager.RealtimeTimeout = cfg.Feed.RealtimeTimeout
	manager.RealtimeMaxSize = cfg.Feed.RealtimeMaxSize
	manager.RealtimeTTL = cfg.Feed.RealtimeCacheTTL
	manager.Downloader = downloader.NewMemoryDownloader()
	manager.Metrics = m
	return manager
}

func newStorage(cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Backend {
	case "sqlite":
		return storage.NewSQLiteStorage(storage.SQLiteConfig{
			OnDisk:    cfg.Directory != "",
			Directory: cfg.Directory,
		})
	case "postgres":
		return storage.NewPSQLStorage(cfg.PostgresURL, false)
	default:
		return storage.NewMemoryStorage(), nil
	}
}

func newStore(cfg config.Config) (*widget.Store, func() error, error) {
	s, err := newStorage(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	return widget.NewStore(s), s.Close, nil
}
