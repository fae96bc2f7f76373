package menu

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML document shape of a catalog file.
type catalogFile struct {
	Entries []Entry `yaml:"entries"`
}

// LoadCatalog reads the YAML catalog file at path and returns a validated
// [Catalog]. It is a convenience wrapper around [LoadCatalogFromReader].
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("menu: open %q: %w", path, err)
	}
	defer f.Close()

	c, err := LoadCatalogFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("menu: parse %q: %w", path, err)
	}
	return c, nil
}

// LoadCatalogFromReader decodes a YAML catalog from r and validates the
// result. Useful in tests where catalogs are built from string literals.
func LoadCatalogFromReader(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("menu: decode yaml: %w", err)
	}
	return NewCatalog(file.Entries)
}
