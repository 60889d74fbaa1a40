// Package discovery produces company lists from bundled vertical datasets
// or the Apollo enrichment API.
package discovery

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed verticals.yaml
var verticalsYAML []byte

// Seed is one bundled company entry.
type Seed struct {
	Name    string `yaml:"name"`
	Website string `yaml:"website"`
}

// Vertical groups the search keywords and seed companies for one market.
type Vertical struct {
	Keywords  []string `yaml:"keywords"`
	Companies []Seed   `yaml:"companies"`
}

// Catalog is the read-only vertical dataset, loaded once at startup and
// shared across the run.
type Catalog struct {
	Verticals map[string]Vertical `yaml:"verticals"`
}

// LoadCatalog parses the embedded vertical dataset.
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(verticalsYAML, &c); err != nil {
		return nil, fmt.Errorf("parse vertical catalog: %w", err)
	}
	if len(c.Verticals) == 0 {
		return nil, fmt.Errorf("vertical catalog is empty")
	}
	return &c, nil
}

// Names returns the known vertical names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Verticals))
	for name := range c.Verticals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keywords returns the search keywords for a vertical, falling back to the
// vertical name itself when unknown.
func (c *Catalog) Keywords(vertical string) []string {
	if v, ok := c.Verticals[vertical]; ok && len(v.Keywords) > 0 {
		return v.Keywords
	}
	return []string{vertical}
}
