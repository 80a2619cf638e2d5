// Package reconcile provides the reconciliation engine that audits one
// canonical store against any number of secondary stores.
//
// The engine performs an outer join keyed by identifier:
//
//   - every canonical identifier is compared against each secondary record that
//     shares it (one comparison per contributing store);
//   - canonical identifiers nobody reported are orphan_canonical;
//   - secondary identifiers unknown to the canonical store are orphan_secondary,
//     once per contributing store.
//
// Only balance and nonce are compared, as literal strings. A pairing is a match
// when both are equal, otherwise a mismatch listing the differing fields.
//
// # Architecture
//
// 1. Engine: Reconcile, ReconcileAll and ReconcileOne work on already
// materialised CanonicalIndex / SecondaryIndex values and never mutate them.
//
// 2. Loader: feature packages implement Loader to build the indices from their
// stores. The engine knows nothing about storage.
//
// 3. Cache: TTL-based snapshot cache with stampede protection, used by
// long-running callers such as the HTTP feature.
//
// # Usage Example
//
//	spec := &reconcile.Spec{Loader: loader, CacheTTL: time.Minute}
//	snap, results, summary, err := reconcile.Run(ctx, spec)
//
//	// Or, with indices already in hand:
//	summary := reconcile.Reconcile(canonical, secondary, func(c reconcile.Comparison) {
//	    fmt.Println(c.ID, c.Classification)
//	})
package reconcile
