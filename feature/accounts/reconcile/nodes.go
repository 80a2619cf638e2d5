package reconcile

import (
	"context"
	"time"

	"account-audit/core/database"
	"account-audit/core/reconcile"
	"account-audit/feature/accounts/source"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NodeLoad reports how one node store contributed.
type NodeLoad struct {
	source.Store
	Load SecondaryLoad
	// Err is set when the store could not be read; the node contributed nothing.
	Err error
}

// Stat converts the load for snapshot bookkeeping.
func (n NodeLoad) Stat() reconcile.SourceStat {
	stat := reconcile.SourceStat{Name: n.Name, Path: n.Path, Accounts: len(n.Load.Records)}
	if n.Err != nil {
		stat.Error = n.Err.Error()
	}
	return stat
}

// NodeOptions configures LoadNodes.
type NodeOptions struct {
	// Table is the node table holding account payloads.
	Table string
	// Concurrency limits simultaneous store reads. Values below 1 mean one.
	Concurrency int
	// Timeout bounds one store read. Zero means no bound.
	Timeout time.Duration
}

// LoadNodes reads every store concurrently and merges the comparable records
// in store order. A store that fails is logged and skipped; the others still
// contribute.
func LoadNodes(ctx context.Context, stores []source.Store, opts NodeOptions, logger *zap.Logger) (reconcile.SecondaryIndex, []NodeLoad) {
	loads := make([]NodeLoad, len(stores))

	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, store := range stores {
		g.Go(func() error {
			loads[i] = loadNode(gctx, store, opts, logger)
			return nil // don't abort the run on one node
		})
	}
	_ = g.Wait()

	merged := reconcile.SecondaryIndex{}
	for _, load := range loads {
		if load.Err == nil {
			load.Load.Merge(merged)
		}
	}
	return merged, loads
}

func loadNode(ctx context.Context, store source.Store, opts NodeOptions, logger *zap.Logger) NodeLoad {
	log := logger.With(zap.String("node", store.Name), zap.String("path", store.Path))

	timeoutSeconds := 0
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		timeoutSeconds = database.CeilSeconds(opts.Timeout)
	}

	rows, err := source.ReadStore(ctx, database.SQLite(store.Path, timeoutSeconds), opts.Table)
	if err != nil {
		log.Warn("Skipping node, store could not be read", zap.Error(err))
		return NodeLoad{Store: store, Err: err}
	}

	load := BuildSecondary(store.Name, rows, log)
	log.Info("Loaded accounts from node",
		zap.Int("accounts", len(load.Records)),
		zap.Int("skipped", load.Skipped),
		zap.Int("failed", load.Failed))
	return NodeLoad{Store: store, Load: load}
}

// Contributing counts the nodes that loaded.
func Contributing(loads []NodeLoad) int {
	n := 0
	for _, l := range loads {
		if l.Err == nil {
			n++
		}
	}
	return n
}
