package reconcile

import (
	"context"
	"time"

	"account-audit/core/database"
	"account-audit/core/reconcile"
	"account-audit/feature/accounts/source"

	"go.uber.org/zap"
)

// Options locates the stores of one audit.
type Options struct {
	// Archiver is the canonical store connection.
	Archiver database.Config
	// ArchiverTable is the archiver table holding account payloads.
	ArchiverTable string
	// NodesFolder is walked for node stores.
	NodesFolder string
	// NodeDBFile is the file name identifying a node store.
	NodeDBFile string
	// Nodes configures how node stores are read.
	Nodes NodeOptions
}

// AccountAdapter implements the reconcile.Loader interface for account stores.
type AccountAdapter struct {
	opts   Options
	logger *zap.Logger
}

// NewAdapter creates a new account adapter.
func NewAdapter(opts Options, logger *zap.Logger) *AccountAdapter {
	return &AccountAdapter{opts: opts, logger: logger}
}

// Name returns the unique name of this adapter.
func (a *AccountAdapter) Name() string {
	return "accounts:" + a.opts.Archiver.Name + ":" + a.opts.NodesFolder
}

// LoadCanonical reads the archiver. Any store failure is fatal and returned as
// a *source.StoreAccessError. The read is bounded by Nodes.Timeout as well.
func (a *AccountAdapter) LoadCanonical(ctx context.Context) (reconcile.CanonicalIndex, error) {
	if a.opts.Nodes.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Nodes.Timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := source.ReadStore(ctx, a.opts.Archiver, a.opts.ArchiverTable)
	if err != nil {
		return nil, err
	}

	load := BuildCanonical(rows, a.logger)
	a.logger.Info("Loaded accounts from archiver database",
		zap.Int("accounts", load.Retained),
		zap.Int("skipped", load.Skipped),
		zap.Int("failed", load.Failed),
		zap.Duration("took", time.Since(start)))
	return load.Index, nil
}

// LoadSecondary discovers and reads every node store.
func (a *AccountAdapter) LoadSecondary(ctx context.Context) (reconcile.SecondaryIndex, []reconcile.SourceStat, error) {
	stores, err := source.Discover(a.opts.NodesFolder, a.opts.NodeDBFile)
	if err != nil {
		return nil, nil, err
	}
	if len(stores) == 0 {
		a.logger.Warn("No node stores found",
			zap.String("folder", a.opts.NodesFolder),
			zap.String("file", a.opts.NodeDBFile))
	}

	start := time.Now()
	index, loads := LoadNodes(ctx, stores, a.opts.Nodes, a.logger)

	stats := make([]reconcile.SourceStat, len(loads))
	for i, l := range loads {
		stats[i] = l.Stat()
	}
	a.logger.Info("Loaded accounts from nodes",
		zap.Int("nodes", Contributing(loads)),
		zap.Int("discovered", len(stores)),
		zap.Int("records", index.Len()),
		zap.Duration("took", time.Since(start)))
	return index, stats, nil
}
