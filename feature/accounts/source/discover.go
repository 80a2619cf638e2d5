package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// UnknownNode names a node store whose path has no grandparent directory.
const UnknownNode = "unknown"

// Store is a discovered node store.
type Store struct {
	// Name is the node instance name used as provenance.
	Name string `json:"name"`
	// Path is the store file.
	Path string `json:"path"`
}

// Discover walks root recursively and returns every file named fileName,
// sorted by path. Unreadable subdirectories are skipped.
func Discover(root, fileName string) ([]Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("nodes folder %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("nodes folder %s is not a directory", root)
	}

	var stores []Store
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && d.Name() == fileName {
			stores = append(stores, Store{Name: NodeName(path), Path: path})
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipDir) {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Slice(stores, func(i, j int) bool { return stores[i].Path < stores[j].Path })
	return stores, nil
}

// NodeName derives the node name from a store path: the name of the directory
// two levels above the file, e.g. "instances/node-1/db/shardeum.sqlite" is
// "node-1".
func NodeName(path string) string {
	parent := filepath.Dir(path)
	grandparent := filepath.Dir(parent)
	if grandparent == parent || grandparent == "." {
		return UnknownNode
	}
	name := filepath.Base(grandparent)
	if name == string(filepath.Separator) || name == "." || name == "" {
		return UnknownNode
	}
	return name
}
