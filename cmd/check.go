package cmd

import (
	"context"
	"fmt"
	"strings"

	"catalog-sync/core/database"
	"catalog-sync/core/snapshot"
	"catalog-sync/core/storage"
	"catalog-sync/core/store/sqlstore"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag     bool
	storageFlag bool
)

// checkCmd verifies the store schema and the snapshot bucket.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the store schema and snapshot bucket",
	Long: `Compares the live store tables against the models and reports missing columns.
With the storage snapshot source (or --storage) it also checks that the bucket exists.
--fix migrates the schema and creates the bucket.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&fixFlag, "fix", false, "Migrate the schema and create the bucket when missing")
	checkCmd.Flags().BoolVar(&storageFlag, "storage", false, "Check the bucket even when snapshots are read from disk")

	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	problems := 0

	if cfg.Database.Driver == database.DriverMemory {
		l.Info("In-memory store has no schema to check")
	} else {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		st := sqlstore.New(db)
		if fixFlag {
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			l.Info("Schema migrated")
		}
		issues, err := st.CheckSchema(ctx)
		if err != nil {
			return err
		}
		for _, issue := range issues {
			l.Warn("Table is missing columns",
				zap.String("table", issue.Table),
				zap.String("columns", strings.Join(issue.Missing, ", ")),
			)
		}
		problems += len(issues)
		if len(issues) == 0 {
			l.Info("Schema OK", zap.String("driver", cfg.Database.Driver))
		}
	}

	if storageFlag || cfg.Snapshot.Source == snapshot.SourceStorage {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		ok, err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region, fixFlag)
		if err != nil {
			return err
		}
		if ok {
			l.Info("Bucket OK", zap.String("bucket", cfg.Storage.Bucket))
		} else {
			l.Warn("Bucket does not exist", zap.String("bucket", cfg.Storage.Bucket))
			problems++
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d problem(s) found; run with --fix to repair", problems)
	}
	return nil
}
