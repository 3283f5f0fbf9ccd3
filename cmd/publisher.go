package cmd

import (
	"context"
	"fmt"
	"os"

	"catalog-sync/core/snapshot"
	"catalog-sync/core/storage"
	"catalog-sync/feature/publisher"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	publisherOut    string
	publisherUpload string
	publisherSource string
)

// publisherCmd groups publisher data file operations.
var publisherCmd = &cobra.Command{
	Use:   "publisher",
	Short: "Work with publisher data files (*.myjson)",
}

// publisherConvertCmd converts publisher files into one snapshot document.
var publisherConvertCmd = &cobra.Command{
	Use:   "convert <dir>",
	Short: "Convert every publisher file under a directory into a snapshot",
	Long: `Reads every *.myjson file under dir and writes one snapshot document.

Examples:
  # Write to stdout
  publisher convert ./publisher

  # Write to a file in the snapshot dir
  publisher convert ./publisher --out snapshots/publisher.json

  # Upload to the snapshot bucket as snapshots/publisher.json
  publisher convert ./publisher --upload publisher`,
	Args: cobra.ExactArgs(1),
	RunE: runPublisherConvert,
}

func init() {
	publisherConvertCmd.Flags().StringVar(&publisherOut, "out", "", "Output file (default stdout)")
	publisherConvertCmd.Flags().StringVar(&publisherUpload, "upload", "", "Upload to the bucket under this snapshot name")
	publisherConvertCmd.Flags().StringVar(&publisherSource, "source", "", "Identifier source (default from config)")

	publisherCmd.AddCommand(publisherConvertCmd)
	RootCmd.AddCommand(publisherCmd)
}

func runPublisherConvert(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	dir := args[0]

	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	source := cfg.Publisher.Source
	if publisherSource != "" {
		source = publisherSource
	}
	if !publisher.Supported(dir) {
		return fmt.Errorf("no %s files found in %s", publisher.Extension, dir)
	}

	snap, err := publisher.Convert(dir, source)
	if err != nil {
		return err
	}
	l.Info("Converted publisher data",
		zap.String("dir", dir),
		zap.Int("growers", len(snap.Growers)),
		zap.Int("farms", len(snap.Farms)),
		zap.Int("fields", len(snap.Fields)),
		zap.Int("crops", len(snap.Crops)),
		zap.Int("crop_zones", len(snap.CropZones)),
	)

	if publisherUpload != "" {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		p := &snapshot.StorageProvider{Client: client, Bucket: cfg.Storage.Bucket, Prefix: cfg.Snapshot.Prefix}
		if err := p.Put(ctx, publisherUpload, snap); err != nil {
			return err
		}
		l.Info("Uploaded snapshot", zap.String("bucket", cfg.Storage.Bucket), zap.String("name", publisherUpload))
		return nil
	}

	if publisherOut == "" {
		return snapshot.Encode(os.Stdout, snap)
	}
	f, err := os.Create(publisherOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", publisherOut, err)
	}
	defer f.Close()
	if err := snapshot.Encode(f, snap); err != nil {
		return err
	}
	l.Info("Wrote snapshot", zap.String("file", publisherOut))
	return nil
}
