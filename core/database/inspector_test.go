package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTableColumns(t *testing.T) {
	cfg := Config{
		Driver: DriverSQLite,
		Name:   ":memory:",
	}
	db, err := Connect(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db)

	err = db.Exec("CREATE TABLE accountsEntry (accountId VARCHAR(255) NOT NULL PRIMARY KEY, data TEXT, timestamp BIGINT)").Error
	assert.NoError(t, err)

	columns, err := GetTableColumns(db, "accountsEntry")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}

	assert.Equal(t, "varchar(255)", colMap["accountid"].Type)
	assert.Equal(t, "PRI", colMap["accountid"].Key)
	assert.Equal(t, "NO", colMap["accountid"].Null)
	assert.Equal(t, "text", colMap["data"].Type)
	assert.Equal(t, "YES", colMap["data"].Null)
	assert.Equal(t, "bigint", colMap["timestamp"].Type)

	// PRAGMA table_info returns no rows for a missing table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}
