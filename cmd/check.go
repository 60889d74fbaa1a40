package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sellence/leadfinder/internal/batch"
	"github.com/sellence/leadfinder/internal/csvio"
	"github.com/sellence/leadfinder/internal/detect"
	collyfetcher "github.com/sellence/leadfinder/internal/fetcher/colly"
	"github.com/sellence/leadfinder/internal/fetcher/headless"
	"github.com/sellence/leadfinder/internal/inspect"
	"github.com/sellence/leadfinder/internal/leads"
	"github.com/sellence/leadfinder/internal/progress"
	"github.com/sellence/leadfinder/internal/progress/sinks"
	"github.com/sellence/leadfinder/internal/status"
)

type checkFlags struct {
	input       string
	output      string
	urlColumn   string
	workers     int
	noSubpages  bool
	singleURL   string
	useHeadless bool
	statusAddr  string
}

// newCheckCmd creates the 'check' subcommand: batch or single-URL website
// qualification.
func newCheckCmd() *cobra.Command {
	flags := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check websites for phone-capture form fields",
		Long: `Checks each company website for phone number input fields across the
homepage and common form pages (contact, quote, demo). Writes a
qualified-leads CSV and an all-results CSV.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.input, "input", "", "input CSV file with company websites")
	cmd.Flags().StringVar(&flags.output, "output", "qualified_leads.csv", "output CSV file for qualified leads")
	cmd.Flags().StringVar(&flags.urlColumn, "url-column", "", "name of the column containing website URLs")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "number of parallel workers")
	cmd.Flags().BoolVar(&flags.noSubpages, "no-subpages", false, "only check the homepage, not subpages")
	cmd.Flags().StringVar(&flags.singleURL, "url", "", "single website URL to check")
	cmd.Flags().BoolVar(&flags.useHeadless, "headless", false, "render JS-heavy pages with a headless browser")
	cmd.Flags().StringVar(&flags.statusAddr, "status-addr", "", "serve /healthz, /metrics and /progress on this address while running")

	return cmd
}

func runCheck(ctx context.Context, flags *checkFlags) error {
	applyCheckOverrides(flags)

	inspector, closeRenderer, err := buildInspector(flags.noSubpages)
	if err != nil {
		return err
	}
	defer closeRenderer()

	if flags.singleURL != "" {
		return checkSingle(ctx, inspector, flags.singleURL)
	}
	if flags.input == "" {
		return fmt.Errorf("either --input or --url is required")
	}
	return checkBatch(ctx, inspector, flags)
}

// applyCheckOverrides folds CLI flags into the loaded configuration.
func applyCheckOverrides(flags *checkFlags) {
	if flags.workers > 0 {
		cfg.Checker.Workers = flags.workers
	}
	if flags.urlColumn != "" {
		cfg.Checker.URLColumn = flags.urlColumn
	}
	if flags.noSubpages {
		cfg.Checker.CheckSubpages = false
	}
	if flags.useHeadless {
		cfg.Headless.Enabled = true
	}
	if flags.statusAddr != "" {
		cfg.Status.Addr = flags.statusAddr
	}
}

func buildInspector(noSubpages bool) (leads.Inspector, func(), error) {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Checker.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})

	var (
		renderer leads.Renderer
		closer   = func() {}
	)
	if cfg.Headless.Enabled {
		chromeRenderer, err := headless.NewChromedp(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Checker.UserAgent,
			NavigationTimeout: cfg.NavTimeout(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init headless renderer: %w", err)
		}
		renderer = chromeRenderer
		closer = chromeRenderer.Close
	}

	inspector := inspect.New(
		inspect.Config{
			SubpagesDisabled: noSubpages || !cfg.Checker.CheckSubpages,
			MaxSubpages:      cfg.Checker.MaxSubpages,
		},
		fetcher,
		detect.New(),
		renderer,
		logger,
	)
	return inspector, closer, nil
}

func checkSingle(ctx context.Context, inspector leads.Inspector, url string) error {
	result := inspector.Inspect(ctx, leads.Company{Website: url})
	switch {
	case result.Skipped:
		return fmt.Errorf("invalid website %q", url)
	case result.Err != nil:
		fmt.Printf("could not check %s: %s\n", url, result.ErrDetail)
	case result.HasPhoneField:
		fmt.Printf("QUALIFIED: %s collects phone numbers\n", url)
		fmt.Printf("  rule:    %d\n", result.Detection.Rule)
		fmt.Printf("  page:    %s\n", result.Detection.Page)
		fmt.Printf("  element: %s\n", result.Detection.Element)
	default:
		fmt.Printf("NOT QUALIFIED: no phone field found on %s (%d pages checked)\n", url, result.PagesChecked)
	}
	return nil
}

func checkBatch(ctx context.Context, inspector leads.Inspector, flags *checkFlags) error {
	companies, header, err := csvio.ReadCompanies(flags.input, cfg.Checker.URLColumn)
	if err != nil {
		return err
	}
	logger.Info("companies loaded",
		zap.String("input", flags.input),
		zap.Int("count", len(companies)),
	)

	registry := prometheus.NewRegistry()
	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	counts := sinks.NewCountSink()
	hub := progress.NewHub(progress.Config{Logger: logger},
		sinks.NewLogSink(logger.Named("progress")),
		promSink,
		counts,
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hub.Close(closeCtx)
	}()

	if cfg.Status.Addr != "" {
		server := status.NewServer(cfg.Status.Addr, counts, registry, logger)
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := batch.New(batch.Config{Workers: cfg.Checker.Workers}, inspector, hub, logger)
	results := runner.Run(runCtx, companies)

	allPath := allOutputPath(flags.output)
	if err := csvio.WriteResults(flags.output, header, results, true); err != nil {
		return err
	}
	if err := csvio.WriteResults(allPath, header, results, false); err != nil {
		return err
	}

	printSummary(results, flags.output, allPath)
	return nil
}

// allOutputPath derives the all-results file name: leads.csv -> leads_all.csv.
func allOutputPath(output string) string {
	if strings.HasSuffix(output, ".csv") {
		return strings.TrimSuffix(output, ".csv") + "_all.csv"
	}
	return output + "_all"
}

func printSummary(results []leads.Result, qualifiedPath, allPath string) {
	var qualified, negative, errored, skipped int
	for _, result := range results {
		switch {
		case result.Skipped:
			skipped++
		case result.Err != nil:
			errored++
		case result.HasPhoneField:
			qualified++
		default:
			negative++
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Outcome", "Count"})
	t.AppendRows([]table.Row{
		{"Qualified", qualified},
		{"Not qualified", negative},
		{"Errors", errored},
		{"Skipped", skipped},
	})
	t.AppendFooter(table.Row{"Total", len(results)})
	t.Render()

	fmt.Printf("\nQualified leads: %s\nAll results:     %s\n", qualifiedPath, allPath)
}
