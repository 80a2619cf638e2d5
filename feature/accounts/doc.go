// Package accounts exposes account audits over HTTP and publishes reports.
//
// # Routes
//
//   - GET  /accounts/audit?verbose=&publish=  full reconciliation
//   - POST /accounts/audit/refresh            drop the cached snapshot
//   - GET  /accounts/:id                      one account across every store
//   - GET  /accounts/reports                  published reports
//   - GET  /accounts/reports/*                one published report
//
// Loaded stores are cached for the configured TTL; concurrent requests share
// one load.
package accounts
