package cmd

import (
	"context"
	"errors"
	"fmt"

	"account-audit/core/config"
	"account-audit/core/database"
	"account-audit/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check that the stores and the report bucket are usable",
	Long:  `Checks that the archiver and every node database carry the expected account table, and that the report bucket exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(contextOf(cmd), true, true)
	},
}

// storesCmd represents the integrity stores command
var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "Check the account table of every database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(contextOf(cmd), true, false)
	},
}

// storageCmd represents the integrity storage command
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the report bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(contextOf(cmd), false, true)
	},
}

func init() {
	integrityCmd.PersistentFlags().StringVarP(&archiverDB, "archiver-db", "a", "", "Path to the archiver SQLite database")
	integrityCmd.PersistentFlags().StringVarP(&nodesFolder, "nodes-folder", "n", "", "Folder searched recursively for node databases")
	storageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket and report folder when missing")

	integrityCmd.AddCommand(storesCmd)
	integrityCmd.AddCommand(storageCmd)
	RootCmd.AddCommand(integrityCmd)
}

func runIntegrityChecks(ctx context.Context, runStores, runStorage bool) error {
	cfg, logg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logg.Sync()

	if archiverDB != "" {
		cfg.Database.Driver = database.DriverSQLite
		cfg.Database.Name = archiverDB
	}
	if nodesFolder != "" {
		cfg.Audit.NodesFolder = nodesFolder
	}

	var failed bool

	if runStores {
		if err := validateStores(cfg); err != nil {
			return err
		}
		svc := integrity.NewService(integrityOptions(cfg), nil, "", "", "", logg)

		logg.Info("Checking store schemas...")
		report, err := svc.CheckStores(ctx)
		if err != nil {
			return fmt.Errorf("store check failed: %w", err)
		}
		logStoresReport(logg, report)
		failed = !report.Matched
	}

	if runStorage {
		if err := checkStorage(ctx, cfg, logg); err != nil {
			if !errors.Is(err, integrity.ErrStorageDisabled) {
				return err
			}
			logg.Warn("Report storage check skipped", zap.Error(err))
		}
	}

	if failed {
		return fmt.Errorf("store schema mismatches found")
	}
	return nil
}

func checkStorage(ctx context.Context, cfg *config.Config, logg *zap.Logger) error {
	svc := integrity.NewService(integrityOptions(cfg), optionalStorage(cfg, logg),
		cfg.Storage.Bucket, cfg.Audit.ReportPrefix, cfg.Storage.Region, logg)

	logg.Info("Checking report storage...", zap.String("bucket", cfg.Storage.Bucket))
	report, err := svc.CheckStorage(ctx, fixFlag)
	if err != nil {
		return err
	}

	switch {
	case report.Ready() && fixFlag:
		logg.Info("Report storage is ready.")
	case report.Ready():
		logg.Info("Report storage is intact.")
	default:
		logg.Warn("Report storage incomplete",
			zap.Bool("bucket_exists", report.BucketExists),
			zap.Bool("prefix_exists", report.PrefixExists))
		logg.Info("Run `integrity storage --fix` to create them.")
	}
	return nil
}

func logStoresReport(logg *zap.Logger, report *integrity.StoresReport) {
	for _, store := range report.Stores {
		l := logg.With(zap.String("role", store.Role), zap.String("store", store.Name))
		switch {
		case store.Error != "":
			l.Error("Inspection Error", zap.String("error", store.Error))
		case !store.Matched():
			l.Warn("Missing Columns", zap.String("table", store.Table.Table), zap.Strings("columns", store.Table.MissingColumns))
		case len(store.Table.TypeMismatches) > 0:
			l.Warn("Type Mismatches", zap.String("table", store.Table.Table), zap.Strings("mismatches", store.Table.TypeMismatches))
		default:
			l.Debug("Schema matches", zap.String("table", store.Table.Table))
		}
	}

	if report.Matched {
		logg.Info("Store schemas match expected definition.", zap.Int("stores", len(report.Stores)))
	} else {
		logg.Warn("Store schema mismatches found", zap.Int("stores", len(report.Stores)))
	}
}
