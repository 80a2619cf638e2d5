package reconcile

import "time"

// NotAvailable is rendered for a value the compared record does not carry.
const NotAvailable = "N/A"

// Field names reported in Comparison.Mismatch.
const (
	FieldBalance = "balance"
	FieldNonce   = "nonce"
)

// Entry is a comparable record as seen by the engine.
// Implementations must be immutable for the duration of a pass.
type Entry interface {
	// Source returns the name of the store the record came from.
	Source() string
	// Balance returns the balance and whether the record has one.
	Balance() (string, bool)
	// Nonce returns the nonce as a string; NotAvailable when absent.
	Nonce() string
}

// CanonicalIndex maps an identifier to the single canonical record.
type CanonicalIndex map[string]Entry

// SecondaryIndex maps an identifier to every secondary record reported for it,
// one per contributing store, in the order the stores were merged.
type SecondaryIndex map[string][]Entry

// Append adds entry under id. Existing entries are never replaced.
func (s SecondaryIndex) Append(id string, entry Entry) {
	s[id] = append(s[id], entry)
}

// Len returns the number of secondary records across all identifiers.
func (s SecondaryIndex) Len() int {
	n := 0
	for _, entries := range s {
		n += len(entries)
	}
	return n
}

// Classification is the outcome of one pairing.
type Classification string

const (
	// ClassMatch means balance and nonce are equal.
	ClassMatch Classification = "match"
	// ClassMismatch means at least one compared field differs.
	ClassMismatch Classification = "mismatch"
	// ClassOrphanCanonical means no secondary store reported the identifier.
	ClassOrphanCanonical Classification = "orphan_canonical"
	// ClassOrphanSecondary means the canonical store does not hold the identifier.
	ClassOrphanSecondary Classification = "orphan_secondary"
)

// Comparison is the classified result for one identifier and one secondary store.
type Comparison struct {
	// ID is the account identifier.
	ID string `json:"id"`

	// Source is the secondary store name. Empty for canonical orphans.
	Source string `json:"source"`

	// Classification is match, mismatch or one of the orphan kinds.
	Classification Classification `json:"classification"`

	// BalanceMatch is true when both sides carry the same balance string.
	BalanceMatch bool `json:"balance_match"`

	// NonceMatch is true when both sides carry the same nonce string.
	NonceMatch bool `json:"nonce_match"`

	CanonicalBalance string `json:"canonical_balance"`
	CanonicalNonce   string `json:"canonical_nonce"`
	SecondaryBalance string `json:"secondary_balance"`
	SecondaryNonce   string `json:"secondary_nonce"`

	// Mismatch lists the fields that differ, e.g. ["nonce"].
	Mismatch []string `json:"mismatch"`
}

// HasMismatch reports whether the comparison was classified as a mismatch.
func (c Comparison) HasMismatch() bool {
	return c.Classification == ClassMismatch
}

// Summary provides aggregate counters for a reconciliation pass.
type Summary struct {
	// TotalComparisons counts canonical x secondary pairings. Orphans are excluded.
	TotalComparisons int `json:"total_comparisons"`

	// Matches counts pairings where every compared field is equal.
	Matches int `json:"matches"`

	// Mismatches counts pairings with at least one differing field.
	Mismatches int `json:"mismatches"`

	// OrphanCanonical counts canonical identifiers no secondary store reported.
	OrphanCanonical int `json:"orphan_canonical"`

	// OrphanSecondary counts secondary records whose identifier is not canonical.
	OrphanSecondary int `json:"orphan_secondary"`

	// MatchRate is the percentage of pairings that matched, 0 when nothing was compared.
	MatchRate float64 `json:"match_rate"`
}

// Sink receives comparisons as the engine classifies them.
type Sink func(Comparison)

// SourceStat records how one secondary store contributed to a snapshot.
type SourceStat struct {
	// Name is the store name used as provenance.
	Name string `json:"name"`

	// Path locates the store.
	Path string `json:"path"`

	// Accounts is the number of comparable records the store contributed.
	Accounts int `json:"accounts"`

	// Error is set when the store could not be loaded and was skipped.
	Error string `json:"error,omitempty"`
}

// Loaded reports whether the store contributed to the snapshot.
func (s SourceStat) Loaded() bool {
	return s.Error == ""
}

// Spec defines the configuration for a cached reconciliation.
type Spec struct {
	// Loader provides the canonical and secondary indices.
	Loader Loader

	// CacheTTL is the time-to-live for cached snapshots.
	// If zero, caching is disabled.
	CacheTTL time.Duration
}

// CacheKey returns a unique key for caching based on spec parameters.
func (s *Spec) CacheKey() string {
	return s.Loader.Name()
}
