// Package pageset derives the candidate page URLs checked for one company.
package pageset

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Common paths where phone-capture forms live. Order matters: the cheapest
// wins are checked first.
var candidatePaths = []string{
	"/contact",
	"/contact-us",
	"/quote",
	"/get-a-quote",
	"/demo",
	"/request-demo",
}

// Link keywords used when harvesting form-like pages from homepage anchors.
var formLinkKeywords = []string{
	"contact", "quote", "get-quote", "get-a-quote", "request", "demo",
	"signup", "sign-up", "register", "get-started", "trial", "pricing",
	"apply", "enroll", "inquiry", "enquiry", "lead", "form",
}

const maxHarvestedLinks = 5

// Config controls resolver output.
type Config struct {
	// SubpagesDisabled restricts the set to the homepage only.
	SubpagesDisabled bool
	// MaxSubpages caps how many non-homepage candidates are emitted.
	MaxSubpages int
}

// Resolver turns a raw website value into an ordered candidate page set.
type Resolver struct {
	cfg Config
}

// New builds a Resolver.
func New(cfg Config) *Resolver {
	if cfg.MaxSubpages <= 0 {
		cfg.MaxSubpages = len(candidatePaths)
	}
	return &Resolver{cfg: cfg}
}

// Normalize turns a bare website value into an absolute https URL.
func Normalize(website string) (string, error) {
	website = strings.TrimSpace(website)
	if website == "" {
		return "", fmt.Errorf("empty website")
	}
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}
	parsed, err := url.Parse(website)
	if err != nil {
		return "", fmt.Errorf("parse website %q: %w", website, err)
	}
	if parsed.Host == "" || !strings.Contains(parsed.Host, ".") {
		return "", fmt.Errorf("website %q has no valid host", website)
	}
	parsed.Fragment = ""
	return strings.TrimSuffix(parsed.String(), "/"), nil
}

// Resolve produces the ordered candidate page set for a website. The first
// element is always the normalized homepage. The sequence is fresh per call.
func (r *Resolver) Resolve(website string) ([]string, error) {
	home, err := Normalize(website)
	if err != nil {
		return nil, err
	}
	pages := []string{home}
	if r.cfg.SubpagesDisabled {
		return pages, nil
	}
	for i, path := range candidatePaths {
		if i >= r.cfg.MaxSubpages {
			break
		}
		pages = append(pages, home+path)
	}
	return pages, nil
}

// FormLinks harvests same-host links from homepage HTML whose href or text
// suggests a form page. Results are absolute URLs, deduplicated, capped.
func FormLinks(baseURL string, html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if !matchesFormKeyword(strings.ToLower(href), strings.ToLower(sel.Text())) {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref)
		if abs.Host != base.Host {
			return true
		}
		abs.Fragment = ""
		full := strings.TrimSuffix(abs.String(), "/")
		if full == "" || full == strings.TrimSuffix(baseURL, "/") {
			return true
		}
		if _, ok := seen[full]; ok {
			return true
		}
		seen[full] = struct{}{}
		links = append(links, full)
		return len(links) < maxHarvestedLinks
	})
	return links
}

func matchesFormKeyword(href, text string) bool {
	for _, kw := range formLinkKeywords {
		if strings.Contains(href, kw) || strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
