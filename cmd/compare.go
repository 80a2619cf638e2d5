package cmd

import (
	"errors"
	"fmt"
	"time"

	"account-audit/core/config"
	"account-audit/core/database"
	"account-audit/core/reconcile"
	"account-audit/core/storage"
	"account-audit/feature/accounts/source"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the compare command
	archiverDB   string
	nodesFolder  string
	verboseRun   bool
	jsonReport   bool
	uploadReport bool
	concurrency  int
	storeTimeout time.Duration
)

// compareCmd runs a full audit and prints the report.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare archiver accounts against every node database",
	Long: `Compare loads every account of the archiver database and of each node database
found under the nodes folder, then reports balance and nonce divergences per node.

By default only mismatches are printed. With --verbose matches and accounts present
on one side only are printed as well.

Examples:
  # Mismatches only
  account-audit compare -a ./archiver-db.sqlite3 -n ./instances

  # Everything, plus a JSON report uploaded to the report bucket
  account-audit compare -a ./archiver-db.sqlite3 -n ./instances -v --json --upload`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&archiverDB, "archiver-db", "a", "", "Path to the archiver SQLite database")
	compareCmd.Flags().StringVarP(&nodesFolder, "nodes-folder", "n", "", "Folder searched recursively for node databases")
	compareCmd.Flags().BoolVarP(&verboseRun, "verbose", "v", false, "Also report matches and orphan accounts")
	compareCmd.Flags().BoolVar(&jsonReport, "json", false, "Write the report as JSON to the report directory")
	compareCmd.Flags().BoolVar(&uploadReport, "upload", false, "Publish the JSON report to the report bucket")
	compareCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Number of node databases loaded at once (default from config)")
	compareCmd.Flags().DurationVar(&storeTimeout, "timeout", 0, "Timeout for reading one database, rounded up to whole seconds (default from config)")

	RootCmd.AddCommand(compareCmd)
}

// applyCompareFlags overrides configuration values with the flags that were set.
func applyCompareFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("archiver-db") {
		cfg.Database.Driver = database.DriverSQLite
		cfg.Database.Name = archiverDB
	}
	if flags.Changed("nodes-folder") {
		cfg.Audit.NodesFolder = nodesFolder
	}
	if flags.Changed("verbose") {
		cfg.Audit.Verbose = verboseRun
	}
	if flags.Changed("concurrency") && concurrency > 0 {
		cfg.Audit.Concurrency = concurrency
	}
	if flags.Changed("timeout") && storeTimeout > 0 {
		cfg.Audit.StoreTimeoutSeconds = database.CeilSeconds(storeTimeout)
	}
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := contextOf(cmd)

	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	applyCompareFlags(cmd, cfg)
	if err := validateStores(cfg); err != nil {
		return err
	}

	var client storage.Client
	if uploadReport {
		if client, err = storage.NewClient(cfg.Storage); err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	l.Info("Starting account audit",
		zap.String("archiver", cfg.Database.Name),
		zap.String("nodes_folder", cfg.Audit.NodesFolder),
		zap.Bool("verbose", cfg.Audit.Verbose))

	svc := newAccountService(cfg, 0, client, l)
	report, err := svc.Audit(ctx, cfg.Audit.Verbose)
	if err != nil {
		var accessErr *source.StoreAccessError
		if errors.As(err, &accessErr) {
			return fmt.Errorf("archiver database unusable: %w", err)
		}
		return fmt.Errorf("audit failed: %w", err)
	}

	logNodeLoads(l, report.Nodes)
	printReport(cmd.OutOrStdout(), report)

	if jsonReport {
		filename, err := writeReport(cfg.Audit.ReportDir, report)
		if err != nil {
			l.Error("Failed to save audit report", zap.Error(err))
		} else {
			l.Info("Audit report saved", zap.String("file", filename))
		}
	}

	if uploadReport {
		key, err := svc.Publish(ctx, report)
		if err != nil {
			return fmt.Errorf("failed to publish report: %w", err)
		}
		l.Info("Audit report uploaded", zap.String("bucket", cfg.Storage.Bucket), zap.String("key", key))
	}

	return nil
}

func logNodeLoads(l *zap.Logger, nodes []reconcile.SourceStat) {
	loaded := 0
	for _, n := range nodes {
		if !n.Loaded() {
			l.Warn("Node skipped", zap.String("node", n.Name), zap.String("path", n.Path), zap.String("error", n.Error))
			continue
		}
		loaded++
		l.Info("Loaded accounts from node", zap.String("node", n.Name), zap.Int("accounts", n.Accounts))
	}
	l.Info("Loaded accounts from nodes", zap.Int("nodes", loaded), zap.Int("discovered", len(nodes)))
}
