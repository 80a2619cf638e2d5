package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Snapshot holds the materialised indices of one load.
// It is never mutated once built.
type Snapshot struct {
	// Canonical is the keyed canonical index.
	Canonical CanonicalIndex

	// Secondary is the merged secondary index.
	Secondary SecondaryIndex

	// Sources records how each secondary store contributed.
	Sources []SourceStat

	// Built is the timestamp when this snapshot was built.
	Built time.Time

	// TTL is the time-to-live for this snapshot.
	TTL time.Duration
}

// IsExpired returns true if this snapshot has expired based on its TTL.
func (s *Snapshot) IsExpired() bool {
	if s.TTL == 0 {
		return true // No caching
	}
	return time.Since(s.Built) > s.TTL
}

// LoadedSources returns the number of secondary stores that contributed.
func (s *Snapshot) LoadedSources() int {
	n := 0
	for _, src := range s.Sources {
		if src.Loaded() {
			n++
		}
	}
	return n
}

// cacheStore holds all snapshots keyed by spec cache key.
type cacheStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
	sf        singleflight.Group
}

// globalCacheStore is the singleton cache store for all reconcile operations.
var globalCacheStore = &cacheStore{
	snapshots: make(map[string]*Snapshot),
}

// BuildSnapshot loads the canonical and secondary indices concurrently.
// This function does NOT store the snapshot; use GetOrBuildSnapshot for that.
func BuildSnapshot(ctx context.Context, spec *Spec) (*Snapshot, error) {
	var (
		canonical    CanonicalIndex
		secondary    SecondaryIndex
		sources      []SourceStat
		canonicalErr error
		secondaryErr error
		wg           sync.WaitGroup
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		canonical, canonicalErr = spec.Loader.LoadCanonical(ctx)
	}()

	go func() {
		defer wg.Done()
		secondary, sources, secondaryErr = spec.Loader.LoadSecondary(ctx)
	}()

	wg.Wait()

	if canonicalErr != nil {
		return nil, canonicalErr
	}
	if secondaryErr != nil {
		return nil, secondaryErr
	}

	if canonical == nil {
		canonical = CanonicalIndex{}
	}
	if secondary == nil {
		secondary = SecondaryIndex{}
	}

	return &Snapshot{
		Canonical: canonical,
		Secondary: secondary,
		Sources:   sources,
		Built:     time.Now(),
		TTL:       spec.CacheTTL,
	}, nil
}

// GetOrBuildSnapshot retrieves a snapshot for the given spec from the store,
// or builds a new one if it doesn't exist or has expired.
// Uses singleflight so concurrent callers share one load.
func GetOrBuildSnapshot(ctx context.Context, spec *Spec) (*Snapshot, error) {
	cacheKey := spec.CacheKey()

	globalCacheStore.mu.RLock()
	snap, exists := globalCacheStore.snapshots[cacheKey]
	globalCacheStore.mu.RUnlock()

	if exists && !snap.IsExpired() {
		return snap, nil
	}

	result, err, _ := globalCacheStore.sf.Do(cacheKey, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		globalCacheStore.mu.RLock()
		snap, exists := globalCacheStore.snapshots[cacheKey]
		globalCacheStore.mu.RUnlock()

		if exists && !snap.IsExpired() {
			return snap, nil
		}

		newSnap, err := BuildSnapshot(ctx, spec)
		if err != nil {
			return nil, err
		}

		globalCacheStore.mu.Lock()
		globalCacheStore.snapshots[cacheKey] = newSnap
		globalCacheStore.mu.Unlock()

		return newSnap, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*Snapshot), nil
}

// InvalidateSnapshot removes the snapshot for the given spec from the store.
func InvalidateSnapshot(spec *Spec) {
	cacheKey := spec.CacheKey()
	globalCacheStore.mu.Lock()
	delete(globalCacheStore.snapshots, cacheKey)
	globalCacheStore.mu.Unlock()
}

// Run loads (or reuses) a snapshot and reconciles it.
func Run(ctx context.Context, spec *Spec) (*Snapshot, []Comparison, Summary, error) {
	var (
		snap *Snapshot
		err  error
	)
	if spec.CacheTTL > 0 {
		snap, err = GetOrBuildSnapshot(ctx, spec)
	} else {
		snap, err = BuildSnapshot(ctx, spec)
	}
	if err != nil {
		return nil, nil, Summary{}, err
	}

	results, summary := ReconcileAll(snap.Canonical, snap.Secondary)
	return snap, results, summary, nil
}
