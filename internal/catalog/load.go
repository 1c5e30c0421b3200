package catalog

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

type seedFile struct {
	SizeCategories   []SizeCategory    `yaml:"sizeCategories"`
	ServiceStandards []ServiceStandard `yaml:"serviceStandards"`
}

// Load reads a YAML seed file and overlays its entries on the built-in
// defaults. Entries with a known id replace the default; new ids extend
// the catalog (custom size classes and service types).
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("catalog: parse seed file %q: %w", path, err)
	}

	sizes := overlay(defaultSizes(), seed.SizeCategories, func(s SizeCategory) string { return s.ID })
	standards := overlay(defaultStandards(), seed.ServiceStandards, func(s ServiceStandard) string { return s.ID })

	c, err := New(sizes, standards)
	if err != nil {
		return nil, fmt.Errorf("catalog: seed file %q: %w", path, err)
	}
	return c, nil
}

func overlay[T any](base, extra []T, id func(T) string) []T {
	idx := make(map[string]int, len(base))
	out := append([]T(nil), base...)
	for i, b := range base {
		idx[id(b)] = i
	}
	for _, e := range extra {
		if i, ok := idx[id(e)]; ok {
			out[i] = e
			continue
		}
		idx[id(e)] = len(out)
		out = append(out, e)
	}
	return out
}
