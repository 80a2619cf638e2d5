// Package reconcile loads account stores into the indices of the core
// reconciliation engine.
//
// BuildCanonical and BuildSecondary turn raw rows into records: payloads are
// decoded, special accounts are dropped and decode failures are logged with
// the account id. LoadNodes reads node stores concurrently, each bounded by a
// timeout, and merges them in discovery order. AccountAdapter wires all of it
// behind the core Loader interface.
package reconcile
