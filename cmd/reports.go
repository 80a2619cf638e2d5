package cmd

import (
	"fmt"
	"time"

	"account-audit/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reportsCmd is the parent command for published report operations.
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List and fetch audit reports published to the report bucket",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := bootstrap()
		if err != nil {
			return err
		}
		defer l.Sync()

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
		svc := newAccountService(cfg, 0, client, l)

		objects, err := svc.Reports(contextOf(cmd))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, obj := range objects {
			fmt.Fprintf(out, "%s\t%d\t%s\n", obj.Key, obj.Size, obj.LastModified.Format(time.RFC3339))
		}
		l.Info("Listed reports", zap.Int("count", len(objects)), zap.String("bucket", cfg.Storage.Bucket))
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print a published report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := bootstrap()
		if err != nil {
			return err
		}
		defer l.Sync()

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
		svc := newAccountService(cfg, 0, client, l)

		report, err := svc.FetchReport(contextOf(cmd), args[0])
		if err != nil {
			return err
		}
		l.Info("Report fetched",
			zap.String("key", args[0]),
			zap.Time("generated_at", report.GeneratedAt),
			zap.Int("nodes", report.NodesLoaded))
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	RootCmd.AddCommand(reportsCmd)
}
