package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sellence/leadfinder/internal/leads"
)

const searchPath = "/v1/mixed_companies/search"

// Employee-count ranges selectable via discovery.company_size.
var sizeFilters = map[string][2]int{
	"small": {10, 50},
	"mid":   {50, 500},
	"large": {500, 5000},
}

// ApolloConfig holds API access settings.
type ApolloConfig struct {
	APIKey      string
	BaseURL     string
	CompanySize string
	Timeout     time.Duration
}

// ApolloSource queries the Apollo company search API, one request per
// vertical keyword, until limit companies are collected.
type ApolloSource struct {
	cfg     ApolloConfig
	catalog *Catalog
	client  *http.Client
	logger  *zap.Logger
}

// NewApolloSource builds an ApolloSource.
func NewApolloSource(cfg ApolloConfig, catalog *Catalog, logger *zap.Logger) (*ApolloSource, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("apollo api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.apollo.io"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApolloSource{
		cfg:     cfg,
		catalog: catalog,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}, nil
}

type searchRequest struct {
	APIKey             string   `json:"api_key"`
	KeywordTags        []string `json:"q_organization_keyword_tags"`
	NumEmployeesRanges []string `json:"organization_num_employees_ranges"`
	Page               int      `json:"page"`
	PerPage            int      `json:"per_page"`
}

type organization struct {
	Name       string `json:"name"`
	WebsiteURL string `json:"website_url"`
	Industry   string `json:"industry"`
}

type searchResponse struct {
	Organizations []organization `json:"organizations"`
}

// Find searches Apollo for companies matching the vertical's keywords.
// Authentication and quota errors abort discovery with a surfaced error;
// they never produce a partial silent result.
func (s *ApolloSource) Find(ctx context.Context, vertical string, limit int) ([]leads.Company, error) {
	size, ok := sizeFilters[s.cfg.CompanySize]
	if !ok {
		size = sizeFilters["mid"]
	}

	var companies []leads.Company
	for _, keyword := range s.catalog.Keywords(vertical) {
		if len(companies) >= limit {
			break
		}
		found, err := s.search(ctx, keyword, size, limit)
		if err != nil {
			return nil, fmt.Errorf("apollo search %q: %w", keyword, err)
		}
		for _, org := range found {
			if len(companies) >= limit {
				break
			}
			companies = append(companies, leads.Company{
				Name:     org.Name,
				Website:  org.WebsiteURL,
				Vertical: vertical,
			})
		}
		s.logger.Debug("apollo keyword searched",
			zap.String("vertical", vertical),
			zap.String("keyword", keyword),
			zap.Int("found", len(found)),
		)
	}
	return companies, nil
}

func (s *ApolloSource) search(ctx context.Context, keyword string, size [2]int, limit int) ([]organization, error) {
	perPage := limit
	if perPage > 100 {
		perPage = 100
	}
	payload := searchRequest{
		APIKey:             s.cfg.APIKey,
		KeywordTags:        []string{keyword},
		NumEmployeesRanges: []string{fmt.Sprintf("%d,%d", size[0], size[1])},
		Page:               1,
		PerPage:            perPage,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("authentication failed (status %d); check the api key", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("quota exceeded (status %d)", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return parsed.Organizations, nil
}
