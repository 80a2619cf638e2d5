// Package utils provides type conversion helpers for values read from store
// rows and HTTP query strings, where drivers and clients hand back loosely
// typed data.
package utils
