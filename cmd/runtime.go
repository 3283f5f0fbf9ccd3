package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/logger"
	"catalog-sync/core/snapshot"
	"catalog-sync/core/storage"
	"catalog-sync/core/store"
	"catalog-sync/core/store/memory"
	"catalog-sync/core/store/sqlstore"
	"catalog-sync/feature/publisher"

	"go.uber.org/zap"
)

// loadRuntime loads the configuration and builds the logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// openStore returns the configured local store, migrated and ready to use.
// The memory driver keeps nothing between runs.
func openStore(ctx context.Context, cfg database.Config, l *zap.Logger) (store.Store, error) {
	if cfg.Driver == database.DriverMemory {
		l.Warn("Using the in-memory store; nothing is persisted")
		return memory.New(), nil
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	st := sqlstore.New(db)
	if err := st.Migrate(ctx); err != nil {
		return nil, err
	}
	l.Info("Connected to store", zap.String("driver", cfg.Driver), zap.String("name", cfg.Name))
	return st, nil
}

// openSnapshots returns the provider selected by the snapshot source setting.
func openSnapshots(cfg *config.Config) (snapshot.Provider, error) {
	switch cfg.Snapshot.Source {
	case publisher.SourceName:
		return publisher.NewProvider(cfg.Publisher), nil
	case snapshot.SourceStorage:
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		return snapshot.NewProvider(cfg.Snapshot, client, cfg.Storage.Bucket)
	default:
		return snapshot.NewProvider(cfg.Snapshot, nil, cfg.Storage.Bucket)
	}
}

// openCache wraps the configured provider in a TTL cache.
func openCache(cfg *config.Config) (*snapshot.Cache, error) {
	p, err := openSnapshots(cfg)
	if err != nil {
		return nil, err
	}
	return snapshot.NewCache(p, time.Duration(cfg.Snapshot.CacheTTLSeconds)*time.Second), nil
}

// confirmDestructiveAction prompts the user for confirmation unless yes is set.
func confirmDestructiveAction(yes bool, what string) bool {
	if yes {
		fmt.Printf("\nAuto-confirmed via --yes: %s\n", what)
		return true
	}

	fmt.Printf("\nAbout to %s. Type 'yes' to confirm: ", what)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
