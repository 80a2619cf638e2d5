package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"account-audit/core/database"
	"account-audit/feature/accounts/models"
	"account-audit/feature/accounts/source"

	"github.com/stretchr/testify/require"
)

func regular(balance, nonce string) string {
	return fmt.Sprintf(`{"account":{"balance":{"dataType":"bi","value":%q},"codeHash":{"dataType":"bh","value":"c"},"nonce":{"dataType":"bi","value":%q},"storageRoot":{"dataType":"bh","value":"s"}},"accountType":0,"hash":"h","timestamp":1}`, balance, nonce)
}

const special = `{"accountType":5,"hash":"h","id":"network","timestamp":1,"current":{}}`

// writeStore creates a sqlite store at path with the table of model holding rows.
func writeStore(t *testing.T, path string, model any, rows ...source.Row) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: path})
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, db.AutoMigrate(model))
	for _, row := range rows {
		switch model.(type) {
		case *models.ArchiverAccount:
			require.NoError(t, db.Create(&models.ArchiverAccount{AccountID: row.ID, Data: row.Payload}).Error)
		case *models.NodeAccountEntry:
			require.NoError(t, db.Create(&models.NodeAccountEntry{AccountID: row.ID, Data: row.Payload}).Error)
		}
	}
}

func writeNode(t *testing.T, root, name string, rows ...source.Row) string {
	t.Helper()
	path := filepath.Join(root, name, "db", "shardeum.sqlite")
	writeStore(t, path, &models.NodeAccountEntry{}, rows...)
	return path
}
