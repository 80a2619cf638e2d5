// Package integrity provides health checks for the stores and report storage.
//
// Unlike the 'accounts' package which reconciles account content, this package
// validates the structural requirements an audit depends on.
//
// # Checks Provided
//
//   - Stores: the archiver and every discovered node store carry the account
//     table with the columns declared by the GORM models (type differences are
//     warnings only).
//   - Storage: the report bucket and prefix exist; ?fix=true creates them.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/stores : Runs the store schema check.
//   - GET /integrity/storage : Runs the report storage check (supports ?fix=true).
package integrity
