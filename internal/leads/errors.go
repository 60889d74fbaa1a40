package leads

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// FetchErrorKind classifies why a page fetch failed.
type FetchErrorKind string

// Fetch error kinds surfaced in the error_detail output column.
const (
	FetchErrTimeout FetchErrorKind = "timeout"
	FetchErrDNS     FetchErrorKind = "dns"
	FetchErrRefused FetchErrorKind = "connection_refused"
	FetchErrHTTP    FetchErrorKind = "http_status"
	FetchErrOther   FetchErrorKind = "other"
)

// FetchError tags a failed fetch with its cause. Fetchers always return a
// FetchError (or nil); they never panic and never return bare errors.
type FetchError struct {
	URL        string
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Kind == FetchErrHTTP {
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Detail renders a short cause string suitable for CSV output.
func (e *FetchError) Detail() string {
	if e.Kind == FetchErrHTTP {
		return fmt.Sprintf("http_status_%d", e.StatusCode)
	}
	return string(e.Kind)
}

// ClassifyFetchError wraps err in a FetchError with the best-guess kind.
// Already-tagged errors pass through unchanged.
func ClassifyFetchError(url string, err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	kind := FetchErrOther
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.As(err, &dnsErr):
		kind = FetchErrDNS
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = FetchErrTimeout
	case errors.Is(err, context.DeadlineExceeded):
		kind = FetchErrTimeout
	case strings.Contains(err.Error(), "connection refused"):
		kind = FetchErrRefused
	}
	return &FetchError{URL: url, Kind: kind, Err: err}
}
