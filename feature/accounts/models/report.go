package models

import (
	"fmt"
	"time"

	"account-audit/core/reconcile"
)

// AuditReport is the document written by `compare --json` and returned by the HTTP feature.
type AuditReport struct {
	GeneratedAt      time.Time              `json:"generated_at"`
	Archiver         string                 `json:"archiver"`
	ArchiverAccounts int                    `json:"archiver_accounts"`
	Nodes            []reconcile.SourceStat `json:"nodes"`
	NodesLoaded      int                    `json:"nodes_loaded"`
	Verbose          bool                   `json:"verbose"`
	Summary          reconcile.Summary      `json:"summary"`
	Comparisons      []reconcile.Comparison `json:"comparisons"`
}

// ReportName returns the file name a report generated at t is stored under.
func ReportName(t time.Time) string {
	return fmt.Sprintf("audit_accounts_%d.json", t.Unix())
}
