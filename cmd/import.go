package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"catalog-sync/core/reconcile"
	"catalog-sync/core/store"
	"catalog-sync/feature/imports"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importScope   string
	reimportZones bool
	clearKinds    []string
	importJSON    bool
	yesConfirm    bool
)

// importCmd reconciles one snapshot against the local store.
var importCmd = &cobra.Command{
	Use:   "import <snapshot>",
	Short: "Reconcile a snapshot into the local store",
	Long: `Import resolves every crop zone of a snapshot (and, through them, their
fields, farms, growers and crops) to local entities, inserting only what cannot be
matched by own id, external identifier or name.

Examples:
  # Crop zone driven import
  import spring-2024

  # Every entity of every kind
  import spring-2024 --scope catalog

  # Import, then clear management zones and import again
  import spring-2024 --reimport-zones

  # Clear farms and fields first (asks for confirmation)
  import spring-2024 --clear farm --clear field`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importScope, "scope", string(reconcile.ScopeCropZones), "Import scope: cropzones or catalog")
	importCmd.Flags().BoolVar(&reimportZones, "reimport-zones", false, "After importing, clear management zones and import again")
	importCmd.Flags().StringSliceVar(&clearKinds, "clear", nil, "Clear these kinds before importing (repeatable)")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "Print the summary as JSON")
	importCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]

	scope, err := reconcile.ParseScope(importScope)
	if err != nil {
		return err
	}
	kinds := make([]store.Kind, 0, len(clearKinds))
	for _, k := range clearKinds {
		kind, err := store.ParseKind(k)
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
	}

	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	st, err := openStore(ctx, cfg.Database, l)
	if err != nil {
		return err
	}
	snapshots, err := openSnapshots(cfg)
	if err != nil {
		return err
	}

	engine := reconcile.NewEngine(st, cfg.Reconcile, l)
	svc := imports.NewService(engine, snapshots, nil, l)

	if len(kinds) > 0 {
		if !confirmDestructiveAction(yesConfirm, fmt.Sprintf("clear %v and their registry entries", clearKinds)) {
			l.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
		for _, kind := range kinds {
			if err := svc.Clear(ctx, kind); err != nil {
				return err
			}
		}
	}

	l.Info("Importing snapshot", zap.String("snapshot", name), zap.String("scope", string(scope)))
	res, err := svc.Import(ctx, name, scope)
	if res != nil {
		printSummary(l, "Import", res.Summary)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if reimportZones {
		l.Info("Re-importing with management zones cleared", zap.String("snapshot", name))
		again, err := svc.ReimportZones(ctx, name)
		if again != nil {
			printSummary(l, "Re-import", again.Summary)
		}
		if err != nil {
			return fmt.Errorf("re-import failed: %w", err)
		}
		res = again
	}

	if importJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return nil
}

// printSummary logs the per-kind counters followed by the inserted objects of each kind.
func printSummary(l *zap.Logger, title string, s *reconcile.Summary) {
	inserted, matched, failed := s.Totals()
	l.Info(title+" summary",
		zap.String("scope", string(s.Scope)),
		zap.Int("inserted", inserted),
		zap.Int("matched", matched),
		zap.Int("failed", failed),
	)

	for _, kind := range store.Kinds {
		k := s.Kind(kind)
		l.Info("Kind",
			zap.String("kind", string(kind)),
			zap.Int("inserted", k.Inserted),
			zap.Int("matched_own", k.MatchedOwn),
			zap.Int("matched_registry", k.MatchedRegistry),
			zap.Int("matched_heuristic", k.MatchedHeuristic),
			zap.Int("failed", k.Failed),
		)
		for _, obj := range s.InsertedOf(kind) {
			l.Info("Inserted",
				zap.String("kind", string(kind)),
				zap.String("name", obj.Name),
				zap.String("local_id", obj.LocalID.String()),
			)
		}
	}

	for _, f := range s.Failures {
		l.Warn("Failed",
			zap.String("kind", string(f.Kind)),
			zap.Int("ref", f.ReferenceID),
			zap.String("error", f.Error),
		)
	}
}
