// Package models contains the account data model shared by the audit features.
//
// An account payload is stored as JSON in one of two layouts which carry no
// explicit type tag:
//
//   - Regular: a nested "account" object whose balance, codeHash, nonce and
//     storageRoot fields are {dataType, value} pairs.
//   - Special: network level accounts with an "id", an optional integer
//     "nonce" and any number of extra fields kept verbatim.
//
// Decode tries the regular layout first. Only regular records are comparable;
// special records are decoded so they can be counted, then dropped.
//
// The package also holds the GORM table models used to inspect store schemas
// and the report types written by the CLI and the HTTP feature.
package models
