package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"account-audit/core/config"
	"account-audit/core/database"
	"account-audit/core/reconcile"
	"account-audit/feature/accounts/models"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func sampleReport() *models.AuditReport {
	return &models.AuditReport{
		GeneratedAt: time.Unix(1700000000, 0).UTC(),
		Archiver:    "archiver.sqlite3",
		Comparisons: []reconcile.Comparison{
			{
				ID: "0xA", Source: "node-1", Classification: reconcile.ClassMatch,
				BalanceMatch: true, NonceMatch: true,
				CanonicalBalance: "100", CanonicalNonce: "5", SecondaryBalance: "100", SecondaryNonce: "5",
			},
			{
				ID: "0xB", Source: "node-2", Classification: reconcile.ClassMismatch,
				BalanceMatch: true, NonceMatch: false,
				CanonicalBalance: "7", CanonicalNonce: "1", SecondaryBalance: "7", SecondaryNonce: "2",
				Mismatch: []string{reconcile.FieldNonce},
			},
			{
				ID: "0xC", Classification: reconcile.ClassOrphanCanonical,
				CanonicalBalance: "9", CanonicalNonce: "0", SecondaryBalance: "N/A", SecondaryNonce: "N/A",
			},
			{
				ID: "0xD", Source: "node-3", Classification: reconcile.ClassOrphanSecondary,
				CanonicalBalance: "N/A", CanonicalNonce: "N/A", SecondaryBalance: "3", SecondaryNonce: "4",
			},
		},
		Summary: reconcile.Summary{TotalComparisons: 3, Matches: 2, Mismatches: 1, MatchRate: 66.66666666666667},
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, sampleReport())

	expected := "\n=== ACCOUNT COMPARISON ===\n\n" +
		"Account ID: 0xA\n" +
		"Node: node-1\n" +
		"  Archiver - Balance: 100, Nonce: 5\n" +
		"  Node     - Balance: 100, Nonce: 5\n" +
		"  STATUS: MATCH\n\n" +
		"Account ID: 0xB\n" +
		"Node: node-2\n" +
		"  Archiver - Balance: 7, Nonce: 1\n" +
		"  Node     - Balance: 7, Nonce: 2\n" +
		"  STATUS: MISMATCH\n" +
		"    - Nonce mismatch\n\n" +
		"Account ID: 0xC (ONLY IN ARCHIVER)\n" +
		"  Balance: 9, Nonce: 0\n" +
		"  STATUS: NOT FOUND IN NODES\n\n" +
		"Account ID: 0xD (ONLY IN NODE: node-3)\n" +
		"  Balance: 3, Nonce: 4\n" +
		"  STATUS: NOT FOUND IN ARCHIVER\n\n" +
		"=== SUMMARY ===\n" +
		"Total comparisons: 3\n" +
		"Mismatches found: 1\n" +
		"Match rate: 66.67%\n"

	assert.Equal(t, expected, buf.String())
}

func TestPrintComparison_BothFieldsMismatch(t *testing.T) {
	var buf bytes.Buffer
	printComparison(&buf, reconcile.Comparison{
		ID: "0xE", Classification: reconcile.ClassMismatch,
		CanonicalBalance: "1", CanonicalNonce: "1", SecondaryBalance: "2", SecondaryNonce: "2",
	})

	assert.Contains(t, buf.String(), "Node: unknown\n")
	assert.Contains(t, buf.String(), "    - Balance mismatch\n    - Nonce mismatch\n")
}

func TestPrintSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, reconcile.Summary{})

	assert.Equal(t, "=== SUMMARY ===\nTotal comparisons: 0\nMismatches found: 0\nMatch rate: 0.00%\n", buf.String())
}

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	filename, err := writeReport(dir, sampleReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "audit_accounts_1700000000.json"), filename)

	data, err := os.ReadFile(filename)
	require.NoError(t, err)

	var report models.AuditReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Len(t, report.Comparisons, 4)
	assert.Equal(t, 1, report.Summary.Mismatches)
}

func TestApplyCompareFlags(t *testing.T) {
	require.NoError(t, compareCmd.ParseFlags([]string{
		"-a", "/data/archiver.sqlite3",
		"-n", "/data/instances",
		"-v",
		"--concurrency", "3",
		"--timeout", "90s",
	}))

	cfg := &config.Config{}
	cfg.Database.Driver = database.DriverMySQL
	cfg.Audit.Concurrency = 8
	cfg.Audit.StoreTimeoutSeconds = 120

	applyCompareFlags(compareCmd, cfg)

	assert.Equal(t, database.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/data/archiver.sqlite3", cfg.Database.Name)
	assert.Equal(t, "/data/instances", cfg.Audit.NodesFolder)
	assert.True(t, cfg.Audit.Verbose)
	assert.Equal(t, 3, cfg.Audit.Concurrency)
	assert.Equal(t, 90, cfg.Audit.StoreTimeoutSeconds)
}

func TestApplyCompareFlags_SubSecondTimeout(t *testing.T) {
	require.NoError(t, compareCmd.ParseFlags([]string{"--timeout", "500ms"}))

	cfg := &config.Config{}
	cfg.Audit.StoreTimeoutSeconds = 120

	applyCompareFlags(compareCmd, cfg)

	assert.Equal(t, 1, cfg.Audit.StoreTimeoutSeconds)
	assert.Equal(t, time.Second, cfg.Audit.StoreTimeout())
}

func TestValidateStores(t *testing.T) {
	cfg := &config.Config{}
	assert.ErrorContains(t, validateStores(cfg), "archiver database is required")

	cfg.Database.Name = "archiver.sqlite3"
	assert.ErrorContains(t, validateStores(cfg), "nodes folder is required")

	cfg.Audit.NodesFolder = "instances"
	assert.NoError(t, validateStores(cfg))
}

func TestAccountOptions(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database = database.SQLite("archiver.sqlite3", 10)
	cfg.Audit.NodesFolder = "instances"
	cfg.Audit.NodeDBFile = "shardeum.sqlite"
	cfg.Audit.ArchiverTable = "accounts"
	cfg.Audit.NodeTable = "accountsEntry"
	cfg.Audit.Concurrency = 4
	cfg.Audit.StoreTimeoutSeconds = 30

	opts := accountOptions(cfg)
	assert.Equal(t, "archiver.sqlite3", opts.Archiver.Name)
	assert.Equal(t, "accountsEntry", opts.Nodes.Table)
	assert.Equal(t, 4, opts.Nodes.Concurrency)
	assert.Equal(t, 30*time.Second, opts.Nodes.Timeout)

	iopts := integrityOptions(cfg)
	assert.Equal(t, "accounts", iopts.ArchiverTable)
	assert.Equal(t, 30, iopts.TimeoutSeconds)
}

func TestRootCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"compare", "integrity", "reports", "start"} {
		assert.True(t, names[name], name)
	}
}
