// Package source enumerates account stores and extracts their raw rows.
//
// Node stores are found by walking a folder for files with a fixed name
// (shardeum.sqlite by default). The node name is taken from the path. Rows are
// read as (accountId, data) pairs and handed to the aggregators untouched.
package source
