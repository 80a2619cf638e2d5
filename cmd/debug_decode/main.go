package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"account-audit/core/database"
	"account-audit/core/utils"
	"account-audit/feature/accounts/models"
)

// Decodes one account payload and prints what the audit would derive from it.
//
//	go run ./cmd/debug_decode <account-id> [payload.json | store.sqlite]
//
// A .sqlite/.sqlite3 argument reads the payload from that store (accountsEntry for
// node stores named shardeum.sqlite, accounts otherwise). Without an argument the
// payload is read from stdin.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: debug_decode <account-id> [payload.json | store.sqlite]")
	}
	id := os.Args[1]

	payload, err := readPayload(id, os.Args[2:])
	if err != nil {
		log.Fatal(err)
	}

	rec, err := models.Decode(id, payload)
	if err != nil {
		log.Fatal(err)
	}

	balance, ok := rec.Balance()
	if !ok {
		balance = models.NotAvailable
	}

	fmt.Printf("Account ID: %s\n", rec.ID)
	fmt.Printf("  Shape: %s\n", rec.Shape())
	fmt.Printf("  Comparable: %v\n", rec.IsComparable())
	fmt.Printf("  Balance: %s, Nonce: %s\n", balance, rec.Nonce())

	out, err := json.MarshalIndent(rec.Data, "  ", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("  Data: %s\n", out)
}

func readPayload(id string, args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}

	path := args[0]
	if ext := filepath.Ext(path); ext != ".sqlite" && ext != ".sqlite3" {
		data, err := os.ReadFile(path)
		return string(data), err
	}

	table := models.ArchiverAccount{}.TableName()
	if strings.EqualFold(filepath.Base(path), "shardeum.sqlite") {
		table = models.NodeAccountEntry{}.TableName()
	}

	db, err := database.Connect(database.SQLite(path, 30))
	if err != nil {
		return "", err
	}
	defer database.Close(db)

	var data any
	row := db.Table(table).Select("data").Where("accountId = ?", id).Row()
	if err := row.Scan(&data); err != nil {
		return "", fmt.Errorf("account %s not found in %s: %w", id, table, err)
	}
	fmt.Printf("Read %s from %s (%s)\n", id, path, table)
	return utils.ToString(data), nil
}
