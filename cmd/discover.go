package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sellence/leadfinder/internal/csvio"
	"github.com/sellence/leadfinder/internal/discovery"
	"github.com/sellence/leadfinder/internal/leads"
)

type discoverFlags struct {
	vertical     string
	allVerticals bool
	apolloKey    string
	limit        int
	output       string
	b2cOnly      bool
}

// newDiscoverCmd creates the 'discover' subcommand: company list generation
// from bundled vertical datasets or the Apollo API.
func newDiscoverCmd() *cobra.Command {
	flags := &discoverFlags{}
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find companies in target verticals",
		Long: `Produces a company CSV for qualification. Without an Apollo API key the
bundled seed lists are used; with a key companies are searched live per
vertical keyword.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiscover(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.vertical, "vertical", "", "target vertical (insurance, education, finance, real_estate, ecommerce)")
	cmd.Flags().BoolVar(&flags.allVerticals, "all-verticals", false, "discover companies from all verticals")
	cmd.Flags().StringVar(&flags.apolloKey, "apollo-key", "", "Apollo.io API key for live search")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "number of companies per vertical")
	cmd.Flags().StringVar(&flags.output, "output", "companies.csv", "output CSV file")
	cmd.Flags().BoolVar(&flags.b2cOnly, "b2c-only", false, "drop companies that look B2B; removed rows go to a _b2b_removed.csv file")

	return cmd
}

func runDiscover(ctx context.Context, flags *discoverFlags) error {
	catalog, err := discovery.LoadCatalog()
	if err != nil {
		return err
	}

	var verticals []string
	switch {
	case flags.allVerticals:
		verticals = catalog.Names()
	case flags.vertical != "":
		verticals = []string{flags.vertical}
	default:
		return fmt.Errorf("either --vertical or --all-verticals is required")
	}

	source, err := buildSource(flags, catalog)
	if err != nil {
		return err
	}

	limit := cfg.Discovery.Limit
	if flags.limit > 0 {
		limit = flags.limit
	}

	var all []leads.Company
	for _, vertical := range verticals {
		companies, err := source.Find(ctx, vertical, limit)
		if err != nil {
			return fmt.Errorf("discover %s companies: %w", vertical, err)
		}
		logger.Info("vertical discovered",
			zap.String("vertical", vertical),
			zap.Int("companies", len(companies)),
		)
		all = append(all, companies...)
	}

	if flags.b2cOnly {
		kept, removed := discovery.FilterB2C(all)
		logger.Info("b2b companies filtered",
			zap.Int("kept", len(kept)),
			zap.Int("removed", len(removed)),
		)
		if len(removed) > 0 {
			removedPath := b2bRemovedPath(flags.output)
			if err := csvio.WriteCompanies(removedPath, removed); err != nil {
				return err
			}
			fmt.Printf("Removed %d B2B companies to %s\n", len(removed), removedPath)
		}
		all = kept
	}

	if err := csvio.WriteCompanies(flags.output, all); err != nil {
		return err
	}
	fmt.Printf("Exported %d companies to %s\n", len(all), flags.output)
	fmt.Printf("Next: leadfinder check --input %s --output qualified_leads.csv\n", flags.output)
	return nil
}

// b2bRemovedPath derives the reject-file name: companies.csv ->
// companies_b2b_removed.csv.
func b2bRemovedPath(output string) string {
	if strings.HasSuffix(output, ".csv") {
		return strings.TrimSuffix(output, ".csv") + "_b2b_removed.csv"
	}
	return output + "_b2b_removed"
}

func buildSource(flags *discoverFlags, catalog *discovery.Catalog) (leads.Source, error) {
	apiKey := flags.apolloKey
	if apiKey == "" {
		apiKey = cfg.Discovery.ApolloAPIKey
	}
	if apiKey == "" {
		return discovery.NewStaticSource(catalog), nil
	}
	source, err := discovery.NewApolloSource(discovery.ApolloConfig{
		APIKey:      apiKey,
		BaseURL:     cfg.Discovery.ApolloBaseURL,
		CompanySize: cfg.Discovery.CompanySize,
		Timeout:     cfg.DiscoveryTimeout(),
	}, catalog, logger)
	if err != nil {
		return nil, fmt.Errorf("init apollo source: %w", err)
	}
	return source, nil
}
