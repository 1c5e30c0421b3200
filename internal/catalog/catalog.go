// Package catalog holds the static reference data the planning engine
// computes against: product size categories and service-type standards.
// A Catalog is loaded once at startup and is read-only afterwards.
package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a size category or service standard id is
// unknown. Callers must treat it as a data error and reject the stop;
// substituting a default would understate service time and capacity.
var ErrNotFound = errors.New("not found")

// SizeCategory describes one class of product (small, medium, large,
// pallet, or a customer-defined class). All times are minutes.
type SizeCategory struct {
	ID             string  `yaml:"id" json:"id"`
	Name           string  `yaml:"name" json:"name"`
	UnitVolumeFt3  float64 `yaml:"unitVolumeFt3" json:"unitVolumeFt3"`
	UnitWeightLb   float64 `yaml:"unitWeightLb" json:"unitWeightLb"`
	ServiceTimeMin float64 `yaml:"serviceTimeMin" json:"serviceTimeMin"`
	// Pallet marks categories that count against a vehicle's pallet
	// positions and incur the service standard's per-pallet time.
	Pallet bool `yaml:"pallet" json:"pallet"`
}

// ServiceStandard describes the handling overhead of one delivery context
// (residential, commercial, warehouse, or custom). All times are minutes.
type ServiceStandard struct {
	ID               string  `yaml:"id" json:"id"`
	Name             string  `yaml:"name" json:"name"`
	BaseTimeMin      float64 `yaml:"baseTimeMin" json:"baseTimeMin"`
	PerItemMin       float64 `yaml:"perItemMin" json:"perItemMin"`
	PerPalletMin     float64 `yaml:"perPalletMin" json:"perPalletMin"`
	SetupTimeMin     float64 `yaml:"setupTimeMin" json:"setupTimeMin"`
	SignatureTimeMin float64 `yaml:"signatureTimeMin" json:"signatureTimeMin"`
}

// Catalog is an immutable lookup table for reference data. The zero value
// is empty; use Default or Load.
type Catalog struct {
	sizes     map[string]SizeCategory
	standards map[string]ServiceStandard
}

// New builds a catalog from explicit entries. Duplicate ids are rejected.
func New(sizes []SizeCategory, standards []ServiceStandard) (*Catalog, error) {
	c := &Catalog{
		sizes:     make(map[string]SizeCategory, len(sizes)),
		standards: make(map[string]ServiceStandard, len(standards)),
	}
	for _, sc := range sizes {
		if sc.ID == "" {
			return nil, fmt.Errorf("catalog: size category with empty id")
		}
		if _, ok := c.sizes[sc.ID]; ok {
			return nil, fmt.Errorf("catalog: duplicate size category %q", sc.ID)
		}
		if sc.UnitVolumeFt3 < 0 || sc.UnitWeightLb < 0 || sc.ServiceTimeMin < 0 {
			return nil, fmt.Errorf("catalog: size category %q has negative values", sc.ID)
		}
		c.sizes[sc.ID] = sc
	}
	for _, ss := range standards {
		if ss.ID == "" {
			return nil, fmt.Errorf("catalog: service standard with empty id")
		}
		if _, ok := c.standards[ss.ID]; ok {
			return nil, fmt.Errorf("catalog: duplicate service standard %q", ss.ID)
		}
		if ss.BaseTimeMin < 0 || ss.PerItemMin < 0 || ss.PerPalletMin < 0 || ss.SetupTimeMin < 0 || ss.SignatureTimeMin < 0 {
			return nil, fmt.Errorf("catalog: service standard %q has negative values", ss.ID)
		}
		c.standards[ss.ID] = ss
	}
	return c, nil
}

// SizeCategory looks up a size category by id.
func (c *Catalog) SizeCategory(id string) (SizeCategory, error) {
	sc, ok := c.sizes[id]
	if !ok {
		return SizeCategory{}, fmt.Errorf("size category %q: %w", id, ErrNotFound)
	}
	return sc, nil
}

// ServiceStandard looks up a service-type standard by id.
func (c *Catalog) ServiceStandard(id string) (ServiceStandard, error) {
	ss, ok := c.standards[id]
	if !ok {
		return ServiceStandard{}, fmt.Errorf("service standard %q: %w", id, ErrNotFound)
	}
	return ss, nil
}

// SizeCategories returns all size categories, for read-only API listings.
func (c *Catalog) SizeCategories() []SizeCategory {
	out := make([]SizeCategory, 0, len(c.sizes))
	for _, id := range sortedKeys(c.sizes) {
		out = append(out, c.sizes[id])
	}
	return out
}

// ServiceStandards returns all service standards, for read-only API listings.
func (c *Catalog) ServiceStandards() []ServiceStandard {
	out := make([]ServiceStandard, 0, len(c.standards))
	for _, id := range sortedKeys(c.standards) {
		out = append(out, c.standards[id])
	}
	return out
}
