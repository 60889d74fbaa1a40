package discovery

import (
	"context"
	"fmt"

	"github.com/sellence/leadfinder/internal/leads"
)

// StaticSource serves seed companies from the bundled catalog.
type StaticSource struct {
	catalog *Catalog
}

// NewStaticSource wraps an already-loaded catalog.
func NewStaticSource(catalog *Catalog) *StaticSource {
	return &StaticSource{catalog: catalog}
}

// Find returns up to limit seed companies for a vertical.
func (s *StaticSource) Find(_ context.Context, vertical string, limit int) ([]leads.Company, error) {
	v, ok := s.catalog.Verticals[vertical]
	if !ok {
		return nil, fmt.Errorf("unknown vertical %q (known: %v)", vertical, s.catalog.Names())
	}
	companies := make([]leads.Company, 0, limit)
	for _, seed := range v.Companies {
		if len(companies) >= limit {
			break
		}
		companies = append(companies, leads.Company{
			Name:     seed.Name,
			Website:  seed.Website,
			Vertical: vertical,
		})
	}
	return companies, nil
}
