package reconcile

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// testEntry is a minimal Entry for engine tests.
type testEntry struct {
	source     string
	balance    string
	hasBalance bool
	nonce      string
}

func (e testEntry) Source() string          { return e.source }
func (e testEntry) Balance() (string, bool) { return e.balance, e.hasBalance }
func (e testEntry) Nonce() string           { return e.nonce }

func entry(source, balance, nonce string) testEntry {
	return testEntry{source: source, balance: balance, hasBalance: true, nonce: nonce}
}

// mockLoader is a simple test loader
type mockLoader struct {
	name          string
	canonical     CanonicalIndex
	secondary     SecondaryIndex
	sources       []SourceStat
	canonicalFunc func(context.Context) (CanonicalIndex, error)
	secondaryFunc func(context.Context) (SecondaryIndex, []SourceStat, error)
}

func (m *mockLoader) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func (m *mockLoader) LoadCanonical(ctx context.Context) (CanonicalIndex, error) {
	if m.canonicalFunc != nil {
		return m.canonicalFunc(ctx)
	}
	return m.canonical, nil
}

func (m *mockLoader) LoadSecondary(ctx context.Context) (SecondaryIndex, []SourceStat, error) {
	if m.secondaryFunc != nil {
		return m.secondaryFunc(ctx)
	}
	return m.secondary, m.sources, nil
}

func TestReconcile_NonceMismatch(t *testing.T) {
	canonical := CanonicalIndex{"0xA": entry("archiver", "100", "5")}
	secondary := SecondaryIndex{"0xA": {entry("node-1", "100", "6")}}

	results, summary := ReconcileAll(canonical, secondary)

	require.Len(t, results, 1)
	c := results[0]
	assert.Equal(t, ClassMismatch, c.Classification)
	assert.Equal(t, []string{FieldNonce}, c.Mismatch)
	assert.True(t, c.BalanceMatch)
	assert.False(t, c.NonceMatch)
	assert.Equal(t, "node-1", c.Source)
	assert.Equal(t, "5", c.CanonicalNonce)
	assert.Equal(t, "6", c.SecondaryNonce)

	assert.Equal(t, 1, summary.Mismatches)
	assert.Equal(t, 1, summary.TotalComparisons)
	assert.Equal(t, 0.0, summary.MatchRate)
}

func TestReconcile_BothFieldsMismatch(t *testing.T) {
	canonical := CanonicalIndex{"0xA": entry("archiver", "100", "5")}
	secondary := SecondaryIndex{"0xA": {entry("node-1", "99", "6")}}

	results, _ := ReconcileAll(canonical, secondary)

	require.Len(t, results, 1)
	assert.Equal(t, []string{FieldBalance, FieldNonce}, results[0].Mismatch)
}

func TestReconcile_OrphanCanonical(t *testing.T) {
	canonical := CanonicalIndex{"0xB": entry("archiver", "1", "1")}

	results, summary := ReconcileAll(canonical, SecondaryIndex{})

	require.Len(t, results, 1)
	assert.Equal(t, ClassOrphanCanonical, results[0].Classification)
	assert.Equal(t, "", results[0].Source)
	assert.Equal(t, NotAvailable, results[0].SecondaryBalance)
	assert.Equal(t, 0, summary.TotalComparisons)
	assert.Equal(t, 1, summary.OrphanCanonical)
	assert.Equal(t, 0.0, summary.MatchRate)
}

func TestReconcile_OrphanSecondaryPerInstance(t *testing.T) {
	secondary := SecondaryIndex{
		"0xE": {entry("node-1", "1", "1"), entry("node-2", "1", "1")},
	}

	results, summary := ReconcileAll(CanonicalIndex{}, secondary)

	require.Len(t, results, 2)
	assert.Equal(t, ClassOrphanSecondary, results[0].Classification)
	assert.Equal(t, "node-1", results[0].Source)
	assert.Equal(t, "node-2", results[1].Source)
	assert.Equal(t, NotAvailable, results[0].CanonicalBalance)
	assert.Equal(t, 2, summary.OrphanSecondary)
	assert.Equal(t, 0, summary.TotalComparisons)
}

func TestReconcile_EveryInstanceCompared(t *testing.T) {
	canonical := CanonicalIndex{"0xC": entry("archiver", "7", "2")}
	secondary := SecondaryIndex{
		"0xC": {entry("node-1", "7", "2"), entry("node-2", "7", "2")},
	}

	results, summary := ReconcileAll(canonical, secondary)

	assert.Len(t, results, 2)
	assert.Equal(t, 2, summary.TotalComparisons)
	assert.Equal(t, 0, summary.Mismatches)
	assert.Equal(t, 2, summary.Matches)
	assert.Equal(t, 100.0, summary.MatchRate)
}

func TestReconcile_Empty(t *testing.T) {
	results, summary := ReconcileAll(CanonicalIndex{}, SecondaryIndex{})
	assert.Empty(t, results)
	assert.Equal(t, Summary{}, summary)
	assert.Equal(t, 0.0, summary.MatchRate)
}

func TestReconcile_NilSink(t *testing.T) {
	canonical := CanonicalIndex{"0xA": entry("archiver", "1", "1")}
	secondary := SecondaryIndex{"0xA": {entry("node-1", "1", "1")}}

	assert.NotPanics(t, func() {
		summary := Reconcile(canonical, secondary, nil)
		assert.Equal(t, 1, summary.Matches)
	})
}

func TestReconcile_LiteralStrings(t *testing.T) {
	tests := []struct {
		name      string
		canonical string
		secondary string
		match     bool
	}{
		{"Equal", "5", "5", true},
		{"HexVersusDecimal", "0x5", "5", false},
		{"LeadingZero", "05", "5", false},
		{"Whitespace", "5 ", "5", false},
		{"Empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canonical := CanonicalIndex{"id": entry("archiver", "1", tt.canonical)}
			secondary := SecondaryIndex{"id": {entry("node", "1", tt.secondary)}}

			results, _ := ReconcileAll(canonical, secondary)
			require.Len(t, results, 1)
			assert.Equal(t, tt.match, results[0].NonceMatch)
		})
	}
}

func TestReconcile_MissingBalance(t *testing.T) {
	noBalance := testEntry{source: "node-1", nonce: "1"}

	t.Run("OneSideMissing", func(t *testing.T) {
		canonical := CanonicalIndex{"id": entry("archiver", "", "1")}
		secondary := SecondaryIndex{"id": {noBalance}}

		results, _ := ReconcileAll(canonical, secondary)
		require.Len(t, results, 1)
		assert.False(t, results[0].BalanceMatch)
		assert.Equal(t, NotAvailable, results[0].SecondaryBalance)
	})

	t.Run("BothMissing", func(t *testing.T) {
		canonical := CanonicalIndex{"id": testEntry{source: "archiver", nonce: "1"}}
		secondary := SecondaryIndex{"id": {noBalance}}

		results, _ := ReconcileAll(canonical, secondary)
		require.Len(t, results, 1)
		assert.True(t, results[0].BalanceMatch)
	})
}

func TestReconcile_DeterministicOrder(t *testing.T) {
	canonical := CanonicalIndex{
		"c": entry("archiver", "1", "1"),
		"a": entry("archiver", "1", "1"),
		"b": entry("archiver", "1", "1"),
	}
	secondary := SecondaryIndex{
		"b": {entry("node-1", "1", "1")},
		"z": {entry("node-1", "1", "1")},
		"y": {entry("node-2", "1", "1")},
	}

	results, _ := ReconcileAll(canonical, secondary)

	var ids []string
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "y", "z"}, ids)
}

func TestReconcile_DoesNotMutateInputs(t *testing.T) {
	canonical := CanonicalIndex{"a": entry("archiver", "1", "1")}
	secondary := SecondaryIndex{
		"a": {entry("node-1", "2", "1")},
		"b": {entry("node-1", "1", "1")},
	}

	first, firstSummary := ReconcileAll(canonical, secondary)
	second, secondSummary := ReconcileAll(canonical, secondary)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSummary, secondSummary)
	assert.Len(t, canonical, 1)
	assert.Len(t, secondary, 2)
	assert.Len(t, secondary["a"], 1)
}

func TestReconcileOne(t *testing.T) {
	canonical := CanonicalIndex{
		"a": entry("archiver", "1", "1"),
		"b": entry("archiver", "1", "1"),
	}
	secondary := SecondaryIndex{
		"a": {entry("node-1", "1", "2")},
		"b": {entry("node-1", "1", "1")},
	}

	results, summary := ReconcileOne("a", canonical, secondary)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, 1, summary.Mismatches)

	results, summary = ReconcileOne("nonexistent", canonical, secondary)
	assert.Empty(t, results)
	assert.Equal(t, 0, summary.TotalComparisons)
}

func TestFilter(t *testing.T) {
	comparisons := []Comparison{
		{ID: "a", Classification: ClassMatch},
		{ID: "b", Classification: ClassMismatch},
		{ID: "c", Classification: ClassOrphanCanonical},
		{ID: "d", Classification: ClassOrphanSecondary},
	}

	assert.Len(t, Filter(comparisons, true), 4)

	filtered := Filter(comparisons, false)
	require.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].ID)

	assert.NotNil(t, Filter(nil, false))
}

func TestSecondaryIndex_Append(t *testing.T) {
	idx := SecondaryIndex{}
	idx.Append("a", entry("node-1", "1", "1"))
	idx.Append("a", entry("node-2", "1", "1"))
	idx.Append("b", entry("node-1", "1", "1"))

	require.Len(t, idx["a"], 2)
	assert.Equal(t, "node-1", idx["a"][0].Source())
	assert.Equal(t, "node-2", idx["a"][1].Source())
	assert.Equal(t, 3, idx.Len())
}

// TestReconcile_TotalComparisonsProperty checks that the number of comparisons
// equals the sum of secondary list lengths over shared identifiers.
func TestReconcile_TotalComparisonsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOfDistinct(rapid.StringMatching(`0x[0-9a-f]{1,3}`), rapid.ID[string]).Draw(t, "ids")
		canonical := CanonicalIndex{}
		secondary := SecondaryIndex{}
		expected := 0

		for i, id := range ids {
			inCanonical := rapid.Bool().Draw(t, fmt.Sprintf("canonical-%d", i))
			instances := rapid.IntRange(0, 4).Draw(t, fmt.Sprintf("instances-%d", i))
			if inCanonical {
				canonical[id] = entry("archiver", "1", "1")
			}
			for n := 0; n < instances; n++ {
				nonce := rapid.SampledFrom([]string{"1", "2"}).Draw(t, fmt.Sprintf("nonce-%d-%d", i, n))
				secondary.Append(id, entry(fmt.Sprintf("node-%d", n), "1", nonce))
			}
			if inCanonical {
				expected += instances
			}
		}

		results, summary := ReconcileAll(canonical, secondary)

		if summary.TotalComparisons != expected {
			t.Fatalf("total comparisons %d, expected %d", summary.TotalComparisons, expected)
		}
		if summary.Matches+summary.Mismatches != summary.TotalComparisons {
			t.Fatalf("matches %d + mismatches %d != total %d", summary.Matches, summary.Mismatches, summary.TotalComparisons)
		}
		if len(results) != summary.TotalComparisons+summary.OrphanCanonical+summary.OrphanSecondary {
			t.Fatalf("emitted %d comparisons, summary accounts for %d", len(results),
				summary.TotalComparisons+summary.OrphanCanonical+summary.OrphanSecondary)
		}
		if summary.TotalComparisons == 0 && summary.MatchRate != 0.0 {
			t.Fatalf("match rate %f with no comparisons", summary.MatchRate)
		}
	})
}

// TestBuildSnapshot_ErrorHandling tests that BuildSnapshot correctly handles errors from loader functions.
func TestBuildSnapshot_ErrorHandling(t *testing.T) {
	tests := []struct {
		name         string
		canonicalErr error
		secondaryErr error
		expectErr    string
	}{
		{
			name:         "Canonical load error",
			canonicalErr: fmt.Errorf("archiver error"),
			expectErr:    "archiver error",
		},
		{
			name:         "Secondary load error",
			secondaryErr: fmt.Errorf("nodes error"),
			expectErr:    "nodes error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &mockLoader{
				canonicalFunc: func(ctx context.Context) (CanonicalIndex, error) {
					if tt.canonicalErr != nil {
						return nil, tt.canonicalErr
					}
					return CanonicalIndex{}, nil
				},
				secondaryFunc: func(ctx context.Context) (SecondaryIndex, []SourceStat, error) {
					if tt.secondaryErr != nil {
						return nil, nil, tt.secondaryErr
					}
					return SecondaryIndex{}, nil, nil
				},
			}

			_, err := BuildSnapshot(context.Background(), &Spec{Loader: loader})
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}
}

func TestBuildSnapshot_NilIndices(t *testing.T) {
	snap, err := BuildSnapshot(context.Background(), &Spec{Loader: &mockLoader{}})
	require.NoError(t, err)
	assert.NotNil(t, snap.Canonical)
	assert.NotNil(t, snap.Secondary)
}

func TestSnapshot_LoadedSources(t *testing.T) {
	snap := &Snapshot{Sources: []SourceStat{
		{Name: "node-1", Accounts: 3},
		{Name: "node-2", Error: "unable to open database file"},
		{Name: "node-3"},
	}}
	assert.Equal(t, 2, snap.LoadedSources())
}

// TestCache_Hit tests that the snapshot is reused on second call.
func TestCache_Hit(t *testing.T) {
	var loadCount atomic.Int32

	loader := &mockLoader{
		name: "cache-hit",
		canonicalFunc: func(ctx context.Context) (CanonicalIndex, error) {
			loadCount.Add(1)
			return CanonicalIndex{"A": entry("archiver", "1", "1")}, nil
		},
	}

	spec := &Spec{
		Loader:   loader,
		CacheTTL: 5 * time.Minute,
	}

	snap1, err := GetOrBuildSnapshot(context.Background(), spec)
	assert.NoError(t, err)
	assert.NotNil(t, snap1)
	assert.Equal(t, int32(1), loadCount.Load())

	snap2, err := GetOrBuildSnapshot(context.Background(), spec)
	assert.NoError(t, err)
	assert.Same(t, snap1, snap2)
	assert.Equal(t, int32(1), loadCount.Load()) // Still 1, not called again

	InvalidateSnapshot(spec)
}

// TestCache_Expiration tests that an expired snapshot is rebuilt.
func TestCache_Expiration(t *testing.T) {
	var loadCount atomic.Int32

	loader := &mockLoader{
		name: "cache-expiration",
		canonicalFunc: func(ctx context.Context) (CanonicalIndex, error) {
			loadCount.Add(1)
			return CanonicalIndex{}, nil
		},
	}

	spec := &Spec{
		Loader:   loader,
		CacheTTL: 10 * time.Millisecond, // Very short TTL
	}

	_, err := GetOrBuildSnapshot(context.Background(), spec)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), loadCount.Load())

	time.Sleep(20 * time.Millisecond)

	_, err = GetOrBuildSnapshot(context.Background(), spec)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), loadCount.Load())

	InvalidateSnapshot(spec)
}

func TestRun(t *testing.T) {
	loader := &mockLoader{
		name:      "run",
		canonical: CanonicalIndex{"0xA": entry("archiver", "100", "5")},
		secondary: SecondaryIndex{"0xA": {entry("node-1", "100", "5")}},
		sources:   []SourceStat{{Name: "node-1", Path: "/nodes/node-1/db/shardeum.sqlite", Accounts: 1}},
	}

	snap, results, summary, err := Run(context.Background(), &Spec{Loader: loader})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, summary.Matches)
	assert.Equal(t, 100.0, summary.MatchRate)
	assert.Equal(t, 1, snap.LoadedSources())
}
