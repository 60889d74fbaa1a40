// Package inspect orchestrates the per-company qualification pipeline.
package inspect

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sellence/leadfinder/internal/fetcher/promote"
	"github.com/sellence/leadfinder/internal/leads"
	"github.com/sellence/leadfinder/internal/pageset"
)

// Config controls Inspector behavior.
type Config struct {
	// SubpagesDisabled restricts inspection to the homepage.
	SubpagesDisabled bool
	// MaxSubpages caps static candidate paths per company.
	MaxSubpages int
}

// Inspector checks one company's website for phone-capture fields. It stops
// at the first page with a positive detection.
type Inspector struct {
	cfg       Config
	resolver  *pageset.Resolver
	fetcher   leads.Fetcher
	detector  leads.Detector
	renderer  leads.Renderer
	heuristic *promote.Heuristic
	logger    *zap.Logger
}

// New constructs an Inspector. renderer may be nil when headless support
// is disabled; heuristic is only consulted when a renderer is present.
func New(
	cfg Config,
	fetcher leads.Fetcher,
	detector leads.Detector,
	renderer leads.Renderer,
	logger *zap.Logger,
) *Inspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inspector{
		cfg: cfg,
		resolver: pageset.New(pageset.Config{
			SubpagesDisabled: cfg.SubpagesDisabled,
			MaxSubpages:      cfg.MaxSubpages,
		}),
		fetcher:   fetcher,
		detector:  detector,
		renderer:  renderer,
		heuristic: promote.NewHeuristic(0),
		logger:    logger,
	}
}

// Inspect produces the qualification verdict for one company. The result
// distinguishes "checked, no phone field" from "could not check": a
// negative verdict requires at least one successful page fetch.
func (i *Inspector) Inspect(ctx context.Context, company leads.Company) leads.Result {
	start := time.Now()
	result := leads.Result{Company: company}

	candidates, err := i.resolver.Resolve(company.Website)
	if err != nil {
		result.Skipped = true
		result.ErrDetail = "invalid_website"
		result.Elapsed = time.Since(start)
		return result
	}

	var (
		fetched      int
		lastErr      error
		homepageBody []byte
	)
	seen := make(map[string]struct{}, len(candidates))

	for idx := 0; idx < len(candidates); idx++ {
		pageURL := candidates[idx]
		if _, ok := seen[pageURL]; ok {
			continue
		}
		seen[pageURL] = struct{}{}

		if ctx.Err() != nil {
			break
		}

		page, err := i.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			lastErr = err
			i.logger.Debug("candidate fetch failed",
				zap.String("company", company.Name),
				zap.String("url", pageURL),
				zap.Error(err),
			)
			continue
		}
		fetched++

		if ok, det := i.detector.Detect(string(page.Body), pageURL); ok {
			result.HasPhoneField = true
			result.Detection = det
			result.PagesChecked = fetched
			result.Elapsed = time.Since(start)
			return result
		}

		// The homepage is always first; use it to harvest extra form
		// links and as the render-promotion probe.
		if idx == 0 {
			homepageBody = page.Body
			if !i.cfg.SubpagesDisabled {
				candidates = mergeLinks(candidates, pageset.FormLinks(candidates[0], string(page.Body)))
			}
		}
	}

	if det := i.maybeRender(ctx, candidates[0], homepageBody); det != nil {
		result.HasPhoneField = true
		result.Detection = det
		result.PagesChecked = fetched + 1
		result.Elapsed = time.Since(start)
		return result
	}

	result.PagesChecked = fetched
	if fetched == 0 {
		if lastErr == nil && ctx.Err() != nil {
			// Cancelled before any candidate was fetched: the company
			// was never actually checked.
			result.Skipped = true
			result.ErrDetail = "interrupted"
			result.Elapsed = time.Since(start)
			return result
		}
		result.Err = lastErr
		var fe *leads.FetchError
		if errors.As(lastErr, &fe) {
			result.ErrDetail = fe.Detail()
		} else if lastErr != nil {
			result.ErrDetail = lastErr.Error()
		} else {
			result.ErrDetail = "no pages fetched"
		}
	}
	result.Elapsed = time.Since(start)
	return result
}

// maybeRender re-checks a JS-looking homepage with the headless renderer.
// A nil return means no rendered detection was obtained.
func (i *Inspector) maybeRender(ctx context.Context, homeURL string, body []byte) *leads.Detection {
	if i.renderer == nil || body == nil || ctx.Err() != nil {
		return nil
	}
	if !i.heuristic.ShouldRender(body) {
		return nil
	}
	html, err := i.renderer.Render(ctx, homeURL)
	if err != nil {
		i.logger.Warn("headless render failed", zap.String("url", homeURL), zap.Error(err))
		return nil
	}
	if ok, det := i.detector.Detect(html, homeURL); ok {
		return det
	}
	return nil
}

func mergeLinks(candidates, harvested []string) []string {
	existing := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		existing[c] = struct{}{}
	}
	for _, link := range harvested {
		if _, ok := existing[link]; ok {
			continue
		}
		existing[link] = struct{}{}
		candidates = append(candidates, link)
	}
	return candidates
}
