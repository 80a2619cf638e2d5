package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"account-audit/core/reconcile"
	"account-audit/feature/accounts/models"

	"github.com/fatih/color"
)

var (
	headerColor   = color.New(color.FgCyan, color.Bold)
	matchColor    = color.New(color.FgGreen)
	mismatchColor = color.New(color.FgRed, color.Bold)
	orphanColor   = color.New(color.FgYellow)
)

// printReport writes the human readable audit: one block per comparison, then the summary.
func printReport(w io.Writer, report *models.AuditReport) {
	headerColor.Fprint(w, "\n=== ACCOUNT COMPARISON ===\n\n")
	for _, c := range report.Comparisons {
		printComparison(w, c)
	}
	printSummary(w, report.Summary)
}

func printComparison(w io.Writer, c reconcile.Comparison) {
	switch c.Classification {
	case reconcile.ClassOrphanCanonical:
		fmt.Fprintf(w, "Account ID: %s (ONLY IN ARCHIVER)\n", c.ID)
		fmt.Fprintf(w, "  Balance: %s, Nonce: %s\n", c.CanonicalBalance, c.CanonicalNonce)
		orphanColor.Fprint(w, "  STATUS: NOT FOUND IN NODES\n\n")

	case reconcile.ClassOrphanSecondary:
		fmt.Fprintf(w, "Account ID: %s (ONLY IN NODE: %s)\n", c.ID, nodeLabel(c.Source))
		fmt.Fprintf(w, "  Balance: %s, Nonce: %s\n", c.SecondaryBalance, c.SecondaryNonce)
		orphanColor.Fprint(w, "  STATUS: NOT FOUND IN ARCHIVER\n\n")

	default:
		fmt.Fprintf(w, "Account ID: %s\n", c.ID)
		fmt.Fprintf(w, "Node: %s\n", nodeLabel(c.Source))
		fmt.Fprintf(w, "  Archiver - Balance: %s, Nonce: %s\n", c.CanonicalBalance, c.CanonicalNonce)
		fmt.Fprintf(w, "  Node     - Balance: %s, Nonce: %s\n", c.SecondaryBalance, c.SecondaryNonce)
		if c.HasMismatch() {
			mismatchColor.Fprint(w, "  STATUS: MISMATCH\n")
			if !c.BalanceMatch {
				fmt.Fprint(w, "    - Balance mismatch\n")
			}
			if !c.NonceMatch {
				fmt.Fprint(w, "    - Nonce mismatch\n")
			}
		} else {
			matchColor.Fprint(w, "  STATUS: MATCH\n")
		}
		fmt.Fprint(w, "\n")
	}
}

func printSummary(w io.Writer, s reconcile.Summary) {
	headerColor.Fprint(w, "=== SUMMARY ===\n")
	fmt.Fprintf(w, "Total comparisons: %d\n", s.TotalComparisons)
	fmt.Fprintf(w, "Mismatches found: %d\n", s.Mismatches)
	fmt.Fprintf(w, "Match rate: %.2f%%\n", s.MatchRate)
}

func nodeLabel(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}

// writeReport saves report as indented JSON under dir and returns the file path.
func writeReport(dir string, report *models.AuditReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	filename := filepath.Join(dir, models.ReportName(report.GeneratedAt))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return filename, nil
}
