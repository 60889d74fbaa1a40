package leads

import "context"

// Fetcher retrieves raw HTML for a single URL. Implementations must return
// a *FetchError for every failure so callers can report the cause.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Renderer executes JavaScript and returns the rendered DOM. It is a
// separate capability from Fetcher so headless support can be swapped or
// disabled without touching inspection logic.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Detector inspects HTML for a phone-capture form field. Implementations
// are pure: no I/O, deterministic, safe for concurrent use.
type Detector interface {
	Detect(html string, pageURL string) (bool, *Detection)
}

// Inspector produces the qualification verdict for one company.
type Inspector interface {
	Inspect(ctx context.Context, company Company) Result
}

// Source yields company records for a vertical, capped at limit.
type Source interface {
	Find(ctx context.Context, vertical string, limit int) ([]Company, error)
}
