package authz

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Directory answers whether an identifier corresponds to a known principal.
// Owner-based policies use it to distinguish "owner unknown" (DenyNotFound)
// from "known but not authorized" (DenyForbidden).
//
// Exists may block on I/O; implementations should honor ctx cancellation.
// Errors are returned to the caller unchanged.
type Directory interface {
	Exists(ctx context.Context, identifier string) (bool, error)
}

// StaticDirectory is a fixed in-memory Directory for tests and dev setups.
// The zero value is an empty directory.
type StaticDirectory map[string]struct{}

// NewStaticDirectory returns a StaticDirectory containing the given identifiers.
func NewStaticDirectory(identifiers ...string) StaticDirectory {
	d := make(StaticDirectory, len(identifiers))
	for _, id := range identifiers {
		d[id] = struct{}{}
	}
	return d
}

// Exists implements Directory.
func (d StaticDirectory) Exists(_ context.Context, identifier string) (bool, error) {
	_, ok := d[identifier]
	return ok, nil
}

// directoryFile is the on-disk YAML format read by LoadDirectoryFile.
type directoryFile struct {
	Users []string `yaml:"users"`
}

// LoadDirectoryFile reads a YAML file of the form
//
//	users:
//	  - alice
//	  - bob
//
// and returns a StaticDirectory of its entries. Intended for dev servers that
// run without a user store.
func LoadDirectoryFile(path string) (StaticDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}

	var f directoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse directory file %s: %w", path, err)
	}

	return NewStaticDirectory(f.Users...), nil
}
