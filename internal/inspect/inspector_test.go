package inspect

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sellence/leadfinder/internal/detect"
	"github.com/sellence/leadfinder/internal/leads"
)

const telFormHTML = `<form><input type="tel" name="phone"></form>`

// stubFetcher serves canned pages keyed by URL; unknown URLs fail with the
// configured error.
type stubFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	failErr *leads.FetchError
	calls   []string
}

func newStubFetcher(pages map[string]string) *stubFetcher {
	return &stubFetcher{
		pages:   pages,
		failErr: &leads.FetchError{Kind: leads.FetchErrRefused},
	}
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (leads.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	body, ok := f.pages[url]
	if !ok {
		return leads.Page{}, &leads.FetchError{URL: url, Kind: f.failErr.Kind, Err: f.failErr.Err}
	}
	return leads.Page{URL: url, FinalURL: url, StatusCode: 200, Body: []byte(body)}, nil
}

func (f *stubFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type stubRenderer struct {
	html string
	err  error
}

func (r *stubRenderer) Render(context.Context, string) (string, error) {
	return r.html, r.err
}

func newInspector(cfg Config, fetcher leads.Fetcher, renderer leads.Renderer) *Inspector {
	return New(cfg, fetcher, detect.New(), renderer, nil)
}

func TestInspectHomepagePositiveShortCircuits(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]string{
		"https://lemonade.com": telFormHTML,
	})
	ins := newInspector(Config{}, fetcher, nil)

	result := ins.Inspect(context.Background(), leads.Company{Name: "Lemonade", Website: "lemonade.com"})
	require.True(t, result.HasPhoneField)
	require.NotNil(t, result.Detection)
	require.Equal(t, leads.RuleTelInput, result.Detection.Rule)
	require.Equal(t, "https://lemonade.com", result.Detection.Page)
	require.Equal(t, 1, fetcher.fetchCount(), "positive homepage must stop further fetches")
}

func TestInspectSubpagePositive(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]string{
		"https://example.com":         `<p>no forms here</p>`,
		"https://example.com/contact": telFormHTML,
	})
	ins := newInspector(Config{}, fetcher, nil)

	result := ins.Inspect(context.Background(), leads.Company{Website: "example.com"})
	require.True(t, result.HasPhoneField)
	require.Equal(t, "https://example.com/contact", result.Detection.Page)
}

func TestInspectHarvestedLinkChecked(t *testing.T) {
	t.Parallel()

	home := `<html><body><a href="/get-started">Get started</a></body></html>`
	fetcher := newStubFetcher(map[string]string{
		"https://example.com":             home,
		"https://example.com/get-started": telFormHTML,
	})
	ins := newInspector(Config{}, fetcher, nil)

	result := ins.Inspect(context.Background(), leads.Company{Website: "example.com"})
	require.True(t, result.HasPhoneField)
	require.Equal(t, "https://example.com/get-started", result.Detection.Page)
}

func TestInspectAllFetchesFailIsErrorNotNegative(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(nil)
	ins := newInspector(Config{}, fetcher, nil)

	result := ins.Inspect(context.Background(), leads.Company{Website: "unreachable.invalid"})
	require.False(t, result.HasPhoneField)
	require.Error(t, result.Err)
	require.Equal(t, "connection_refused", result.ErrDetail)
	require.Zero(t, result.PagesChecked)
}

func TestInspectPartialFailureIsNegative(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]string{
		"https://example.com": `<p>plain marketing page</p>`,
	})
	ins := newInspector(Config{}, fetcher, nil)

	result := ins.Inspect(context.Background(), leads.Company{Website: "example.com"})
	require.False(t, result.HasPhoneField)
	require.NoError(t, result.Err, "one successful fetch means a real negative")
	require.Equal(t, 1, result.PagesChecked)
}

func TestInspectInvalidWebsiteSkipped(t *testing.T) {
	t.Parallel()

	ins := newInspector(Config{}, newStubFetcher(nil), nil)
	result := ins.Inspect(context.Background(), leads.Company{Website: "not a url"})
	require.True(t, result.Skipped)
	require.Equal(t, "invalid_website", result.ErrDetail)
}

func TestInspectCancelledBeforeAnyFetchIsSkipped(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]string{
		"https://example.com": telFormHTML,
	})
	ins := newInspector(Config{}, fetcher, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := ins.Inspect(ctx, leads.Company{Website: "example.com"})

	require.True(t, result.Skipped)
	require.Equal(t, "interrupted", result.ErrDetail)
	require.NoError(t, result.Err)
	require.False(t, result.HasPhoneField)
	require.Zero(t, fetcher.fetchCount())
}

func TestInspectSubpagesDisabled(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]string{
		"https://example.com":         `<a href="/contact">contact</a>`,
		"https://example.com/contact": telFormHTML,
	})
	ins := newInspector(Config{SubpagesDisabled: true}, fetcher, nil)

	result := ins.Inspect(context.Background(), leads.Company{Website: "example.com"})
	require.False(t, result.HasPhoneField)
	require.Equal(t, 1, fetcher.fetchCount())
}

func TestInspectRenderedFallbackPositive(t *testing.T) {
	t.Parallel()

	// SPA shell: empty mount point, no static phone signal.
	fetcher := newStubFetcher(map[string]string{
		"https://example.com": `<html><body><div id="root"></div></body></html>`,
	})
	renderer := &stubRenderer{html: telFormHTML}
	ins := newInspector(Config{SubpagesDisabled: true}, fetcher, renderer)

	result := ins.Inspect(context.Background(), leads.Company{Website: "example.com"})
	require.True(t, result.HasPhoneField)
	require.Equal(t, leads.RuleTelInput, result.Detection.Rule)
}

func TestInspectRendererFailureFallsBackToStaticVerdict(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[string]string{
		"https://example.com": `<div id="root"></div>`,
	})
	renderer := &stubRenderer{err: context.DeadlineExceeded}
	ins := newInspector(Config{SubpagesDisabled: true}, fetcher, renderer)

	result := ins.Inspect(context.Background(), leads.Company{Website: "example.com"})
	require.False(t, result.HasPhoneField)
	require.NoError(t, result.Err)
}
