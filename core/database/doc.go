// Package database handles store connections and schema inspection.
//
// It wraps GORM to open the archiver and node stores. SQLite files are opened
// read-only by default so a mistyped path fails instead of creating an empty
// store. The archiver may also live in MySQL.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table for the store integrity check,
// which compares them with the GORM models of the accounts feature.
//
// # Usage
//
//	db, err := database.Connect(database.SQLite("/data/archiver.sqlite3", 30))
//	if err != nil {
//	    return err
//	}
//	defer database.Close(db)
//
//	columns, err := database.GetTableColumns(db, "accounts")
package database
