package cmd

import (
	"context"
	"fmt"
	"time"

	"account-audit/core/config"
	"account-audit/core/logger"
	"account-audit/core/storage"
	"account-audit/feature/accounts"
	accountsReconcile "account-audit/feature/accounts/reconcile"
	"account-audit/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// bootstrap loads the configuration and builds the logger every command starts from.
func bootstrap() (*config.Config, *zap.Logger, error) {
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

// validateStores rejects a run without both store locations.
func validateStores(cfg *config.Config) error {
	if cfg.Database.Name == "" {
		return fmt.Errorf("archiver database is required (--archiver-db or DATABASE_NAME)")
	}
	if cfg.Audit.NodesFolder == "" {
		return fmt.Errorf("nodes folder is required (--nodes-folder or AUDIT_NODES_FOLDER)")
	}
	return nil
}

func accountOptions(cfg *config.Config) accountsReconcile.Options {
	return accountsReconcile.Options{
		Archiver:      cfg.Database,
		ArchiverTable: cfg.Audit.ArchiverTable,
		NodesFolder:   cfg.Audit.NodesFolder,
		NodeDBFile:    cfg.Audit.NodeDBFile,
		Nodes: accountsReconcile.NodeOptions{
			Table:       cfg.Audit.NodeTable,
			Concurrency: cfg.Audit.Concurrency,
			Timeout:     cfg.Audit.StoreTimeout(),
		},
	}
}

func integrityOptions(cfg *config.Config) integrity.Options {
	return integrity.Options{
		Archiver:       cfg.Database,
		ArchiverTable:  cfg.Audit.ArchiverTable,
		NodesFolder:    cfg.Audit.NodesFolder,
		NodeDBFile:     cfg.Audit.NodeDBFile,
		NodeTable:      cfg.Audit.NodeTable,
		TimeoutSeconds: cfg.Audit.StoreTimeoutSeconds,
	}
}

// newAccountService wires the account audit. client may be nil.
func newAccountService(cfg *config.Config, cacheTTL time.Duration, client storage.Client, l *zap.Logger) *accounts.Service {
	adapter := accountsReconcile.NewAdapter(accountOptions(cfg), l)
	publisher := accounts.Publisher{
		Client: client,
		Bucket: cfg.Storage.Bucket,
		Region: cfg.Storage.Region,
		Prefix: cfg.Audit.ReportPrefix,
	}
	return accounts.NewService(adapter, cacheTTL, cfg.Database.Name, publisher, l)
}

// optionalStorage returns nil and logs a warning when the storage client
// cannot be created.
func optionalStorage(cfg *config.Config, l *zap.Logger) storage.Client {
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		l.Warn("Report storage disabled", zap.Error(err))
		return nil
	}
	return client
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
