package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
)

// Doer is the subset of *http.Client the pipeline needs, so callers can
// inject a fake transport in tests without standing up a server.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AuthHeader returns the header name/value pair a forge capability supplies
// for authenticated requests (spec.md §4.3's get_authheader).
type AuthHeader struct {
	Name  string
	Value string
}

// ErrorStringer extracts a human-readable message from a backend's error
// response body (spec.md §4.3's api_error_string).
type ErrorStringer func(statusCode int, body []byte) string

// Pipeline is the shared fetch machinery every forge adapter drives. One
// Pipeline is built per backend account (it pins AuthHeader and
// ErrorString), mirroring the teacher's per-provider *Client.
type Pipeline struct {
	HTTP         Doer
	Backend      string
	AuthHeader   func() AuthHeader
	ErrorString  ErrorStringer
	Retry        RetryConfig
	BaseURL      string // for pagination-link host validation
}

func (p *Pipeline) retryConfig() RetryConfig {
	if p.Retry == (RetryConfig{}) {
		return DefaultRetryConfig()
	}
	return p.Retry
}

func (p *Pipeline) newRequest(ctx context.Context, method, rawURL string, body []byte, acceptHeader string, extraHeaders map[string]string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, gclierr.Transportf(p.Backend, false, "building request: %v", err)
	}
	if auth := p.AuthHeader(); auth.Name != "" {
		req.Header.Set(auth.Name, auth.Value)
	}
	if acceptHeader != "" {
		req.Header.Set("Accept", acceptHeader)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}
	return req, nil
}

// do executes one request with retry, translating transport/HTTP-status
// failures into a *gclierr.Error via the backend's ErrorStringer.
func (p *Pipeline) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var resp *http.Response
	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		cloned := req.Clone(ctx)
		if req.Body != nil {
			// Clone shares the original Body, so each attempt takes a
			// fresh copy from GetBody; the pipeline always supplies
			// payloads via newRequest, which wraps a bytes.Reader and
			// therefore populates GetBody.
			if req.GetBody != nil {
				b, _ := req.GetBody()
				cloned.Body = b
			}
		}
		r, callErr := p.HTTP.Do(cloned)
		if callErr != nil {
			return gclierr.NewTransportError(p.Backend, 0, callErr.Error())
		}
		if r.StatusCode >= 400 {
			bodyBytes, _ := io.ReadAll(r.Body)
			r.Body.Close()
			msg := p.errorString(r.StatusCode, bodyBytes)
			return gclierr.NewTransportError(p.Backend, r.StatusCode, msg)
		}
		resp = r
		return nil
	}, p.retryConfig())
	return resp, err
}

func (p *Pipeline) errorString(statusCode int, body []byte) string {
	if p.ErrorString != nil {
		return p.ErrorString(statusCode, body)
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

// FetchOne performs one GET and returns the response body, per spec.md
// §4.3's fetch_one.
func (p *Pipeline) FetchOne(ctx context.Context, rawURL, acceptHeader string) ([]byte, error) {
	req, err := p.newRequest(ctx, http.MethodGet, rawURL, nil, acceptHeader, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, gclierr.Transportf(p.Backend, false, "reading response: %v", err)
	}
	return body, nil
}

// FetchWithMethod drives a non-GET verb. The response body is only read (and
// returned) when captureBody is true, so mutations that ignore the response
// allocate nothing, per spec.md §4.3.
func (p *Pipeline) FetchWithMethod(ctx context.Context, method, rawURL string, payload []byte, extraHeaders map[string]string, captureBody bool) ([]byte, error) {
	req, err := p.newRequest(ctx, method, rawURL, payload, "", extraHeaders)
	if err != nil {
		return nil, err
	}
	resp, err := p.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if !captureBody {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, gclierr.Transportf(p.Backend, false, "reading response: %v", err)
	}
	return body, nil
}

// ListOptions configures FetchList for one element type. Parse appends the
// page's elements to list; Filter, if set, drops elements from list in
// place after every page (spec.md §4.3).
type ListOptions[T any] struct {
	AcceptHeader string
	Parse        func(body []byte, list *[]T) error
	Filter       func(list *[]T)
	Max          int // -1 means "all pages"
}

var nextLinkRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// parseNextLink extracts the "next" URL from a Link response header,
// grounded on the teacher's parseNextLink.
func parseNextLink(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	m := nextLinkRe.FindStringSubmatch(linkHeader)
	if len(m) >= 2 {
		return m[1]
	}
	return ""
}

// resolvePaginationURL validates a Link-header URL against SSRF before
// following it, grounded on the teacher's ValidateAndResolvePaginationURL:
// no scheme downgrade, host must match the pipeline's own base URL, and
// (when BaseURL is set) the path prefix must be preserved.
func (p *Pipeline) resolvePaginationURL(rawURL string) (string, error) {
	if p.BaseURL == "" {
		return rawURL, nil
	}
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return "", gclierr.Transportf(p.Backend, false, "invalid base URL: %v", err)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", gclierr.Transportf(p.Backend, false, "invalid pagination URL: %v", err)
	}
	if !parsed.IsAbs() {
		parsed = base.ResolveReference(parsed)
	}
	if base.Scheme == "https" && parsed.Scheme == "http" {
		return "", gclierr.Transportf(p.Backend, false, "scheme downgrade not allowed: %s -> %s", base.Scheme, parsed.Scheme)
	}
	if parsed.Host != base.Host {
		return "", gclierr.Transportf(p.Backend, false, "untrusted host: %s (expected %s)", parsed.Host, base.Host)
	}
	if !strings.HasPrefix(parsed.Path, base.Path) {
		return "", gclierr.Transportf(p.Backend, false, "unexpected API path: %s", parsed.Path)
	}
	return parsed.String(), nil
}

// FetchList performs paginated GETs, following Link: rel="next" until the
// server stops supplying one, the caller's max is reached, or a transport
// or parse failure occurs (spec.md §4.3).
func FetchList[T any](ctx context.Context, p *Pipeline, startURL string, opts ListOptions[T]) ([]T, error) {
	var list []T
	nextURL := startURL

	for nextURL != "" {
		req, err := p.newRequest(ctx, http.MethodGet, nextURL, nil, opts.AcceptHeader, nil)
		if err != nil {
			return nil, err
		}
		resp, err := p.do(ctx, req)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, gclierr.Transportf(p.Backend, false, "reading response: %v", err)
		}

		if err := opts.Parse(body, &list); err != nil {
			return nil, gclierr.Parsef("parsing %s page: %v", p.Backend, err)
		}
		if opts.Filter != nil {
			opts.Filter(&list)
		}
		if opts.Max >= 0 && len(list) >= opts.Max {
			return list[:opts.Max], nil
		}

		link := parseNextLink(resp.Header.Get("Link"))
		if link == "" {
			break
		}
		nextURL, err = p.resolvePaginationURL(link)
		if err != nil {
			return nil, err
		}
	}

	return list, nil
}
