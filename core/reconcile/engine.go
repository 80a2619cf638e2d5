package reconcile

import (
	"sort"
)

// Reconcile performs a single read-only pass over the canonical and secondary
// indices and hands every classified comparison to sink (which may be nil).
//
// Canonical identifiers are visited in sorted order and each one is compared
// against every secondary record sharing it. Secondary identifiers absent from
// the canonical index are then reported once per contributing store, also in
// sorted order. Neither index is modified.
func Reconcile(canonical CanonicalIndex, secondary SecondaryIndex, sink Sink) Summary {
	var summary Summary
	emit := func(c Comparison) {
		if sink != nil {
			sink(c)
		}
	}

	for _, id := range sortedKeys(canonical) {
		canon := canonical[id]
		entries, ok := secondary[id]
		if !ok || len(entries) == 0 {
			summary.OrphanCanonical++
			emit(orphanCanonical(id, canon))
			continue
		}

		for _, entry := range entries {
			c := compare(id, canon, entry)
			summary.TotalComparisons++
			if c.HasMismatch() {
				summary.Mismatches++
			} else {
				summary.Matches++
			}
			emit(c)
		}
	}

	for _, id := range sortedKeys(secondary) {
		if _, ok := canonical[id]; ok {
			continue
		}
		for _, entry := range secondary[id] {
			summary.OrphanSecondary++
			emit(orphanSecondary(id, entry))
		}
	}

	summary.MatchRate = matchRate(summary.TotalComparisons, summary.Mismatches)
	return summary
}

// ReconcileAll runs Reconcile and collects every comparison.
func ReconcileAll(canonical CanonicalIndex, secondary SecondaryIndex) ([]Comparison, Summary) {
	var results []Comparison
	summary := Reconcile(canonical, secondary, func(c Comparison) {
		results = append(results, c)
	})
	return results, summary
}

// ReconcileOne restricts the pass to a single identifier.
func ReconcileOne(id string, canonical CanonicalIndex, secondary SecondaryIndex) ([]Comparison, Summary) {
	canon := CanonicalIndex{}
	if entry, ok := canonical[id]; ok {
		canon[id] = entry
	}
	sec := SecondaryIndex{}
	if entries, ok := secondary[id]; ok {
		sec[id] = entries
	}
	return ReconcileAll(canon, sec)
}

// Filter applies the reporting policy: verbose keeps everything, otherwise
// only mismatches are kept.
func Filter(comparisons []Comparison, verbose bool) []Comparison {
	if verbose {
		return comparisons
	}
	filtered := make([]Comparison, 0)
	for _, c := range comparisons {
		if c.HasMismatch() {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// compare classifies one canonical/secondary pairing. Values are compared as
// literal strings.
func compare(id string, canon, entry Entry) Comparison {
	canonBalance, canonHas := canon.Balance()
	entryBalance, entryHas := entry.Balance()
	canonNonce := canon.Nonce()
	entryNonce := entry.Nonce()

	c := Comparison{
		ID:               id,
		Source:           entry.Source(),
		BalanceMatch:     canonHas == entryHas && canonBalance == entryBalance,
		NonceMatch:       canonNonce == entryNonce,
		CanonicalBalance: display(canonBalance, canonHas),
		CanonicalNonce:   canonNonce,
		SecondaryBalance: display(entryBalance, entryHas),
		SecondaryNonce:   entryNonce,
		Mismatch:         []string{},
	}

	if !c.BalanceMatch {
		c.Mismatch = append(c.Mismatch, FieldBalance)
	}
	if !c.NonceMatch {
		c.Mismatch = append(c.Mismatch, FieldNonce)
	}

	if len(c.Mismatch) > 0 {
		c.Classification = ClassMismatch
	} else {
		c.Classification = ClassMatch
	}
	return c
}

func orphanCanonical(id string, canon Entry) Comparison {
	balance, has := canon.Balance()
	return Comparison{
		ID:               id,
		Classification:   ClassOrphanCanonical,
		CanonicalBalance: display(balance, has),
		CanonicalNonce:   canon.Nonce(),
		SecondaryBalance: NotAvailable,
		SecondaryNonce:   NotAvailable,
		Mismatch:         []string{},
	}
}

func orphanSecondary(id string, entry Entry) Comparison {
	balance, has := entry.Balance()
	return Comparison{
		ID:               id,
		Source:           entry.Source(),
		Classification:   ClassOrphanSecondary,
		CanonicalBalance: NotAvailable,
		CanonicalNonce:   NotAvailable,
		SecondaryBalance: display(balance, has),
		SecondaryNonce:   entry.Nonce(),
		Mismatch:         []string{},
	}
}

func display(value string, ok bool) string {
	if !ok {
		return NotAvailable
	}
	return value
}

func matchRate(total, mismatches int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(total-mismatches) / float64(total) * 100
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
