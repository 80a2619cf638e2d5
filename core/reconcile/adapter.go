package reconcile

import "context"

// Loader defines how the indices for one reconciliation are obtained.
// The engine itself never touches a store; loaders do.
type Loader interface {
	// Name returns a name unique to the loaded stores. It keys the snapshot cache.
	Name() string

	// LoadCanonical loads the canonical index. An error aborts the whole run.
	LoadCanonical(ctx context.Context) (CanonicalIndex, error)

	// LoadSecondary loads and merges every secondary store. A store that fails is
	// reported in the returned stats and skipped; an error is returned only when
	// the stores cannot be enumerated at all.
	LoadSecondary(ctx context.Context) (SecondaryIndex, []SourceStat, error)
}
