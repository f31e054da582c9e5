// Package catalog holds the built-in lists of practitioners, diagnoses and
// medications offered while filling in the intake form.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/atinylittleshell/clinicdesk/internal/registry"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.default.yaml
var defaultCatalog []byte

type Catalog struct {
	Practitioners []string `yaml:"practitioners"`
	Diagnoses     []string `yaml:"diagnoses"`
	Medications   []string `yaml:"medications"`
}

// Default returns the catalog compiled into the binary.
func Default() Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in catalog: %v", err))
	}
	return c
}

func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}

	c.Practitioners = clean(c.Practitioners)
	c.Diagnoses = clean(c.Diagnoses)
	c.Medications = clean(c.Medications)
	return c, nil
}

// Load reads a user catalog and lays it over the default one: every list the
// file defines replaces the built-in list. An empty path returns the default.
func Load(path string) (Catalog, error) {
	base := Default()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}

	user, err := Parse(data)
	if err != nil {
		return Catalog{}, err
	}

	if user.Practitioners != nil {
		base.Practitioners = user.Practitioners
	}
	if user.Diagnoses != nil {
		base.Diagnoses = user.Diagnoses
	}
	if user.Medications != nil {
		base.Medications = user.Medications
	}
	return base, nil
}

// For returns the catalog list backing a patient field. Patient names have
// no catalog.
func (c Catalog) For(field registry.Field) []string {
	switch field {
	case registry.FieldPractitioner:
		return c.Practitioners
	case registry.FieldDiagnosis:
		return c.Diagnoses
	case registry.FieldMedication:
		return c.Medications
	default:
		return nil
	}
}

// Merge puts recently used values ahead of catalog entries. Duplicates are
// kept; the suggestion input collapses them.
func Merge(recent, catalog []string) []string {
	merged := make([]string, 0, len(recent)+len(catalog))
	merged = append(merged, recent...)
	return append(merged, catalog...)
}

func clean(values []string) []string {
	if values == nil {
		return nil
	}
	return lo.Filter(values, func(v string, _ int) bool {
		return strings.TrimSpace(v) != ""
	})
}
