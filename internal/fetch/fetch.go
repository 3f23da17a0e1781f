// Package fetch retrieves tender payloads from HTTP or local sources, falls back
// to the payload cache, and converts HTML fragments to plain text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; TenderIntel/1.0)"

// maxBodyBytes caps the size of a payload document.
const maxBodyBytes = 32 << 20

// Result holds the raw body read from a source.
type Result struct {
	Source      string
	Body        []byte
	ContentType string
	StatusCode  int
}

// Error represents an error while reading a source.
type Error struct {
	Source  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.Source, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	// Now stamps the cache-busting query parameter. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// IsRemote reports whether src names an HTTP(S) resource rather than a local file.
func IsRemote(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Source reads src, dispatching to URL for http(s) sources and File otherwise.
func Source(ctx context.Context, src string, opts *Options) (*Result, error) {
	if IsRemote(src) {
		return URL(ctx, src, opts)
	}
	return File(src)
}

// URL retrieves a document over HTTP. Every request carries a fresh ts query
// parameter and asks intermediaries not to serve a stored copy.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			Source:  urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	query := parsedURL.Query()
	query.Set("ts", strconv.FormatInt(now().UnixMilli(), 10))
	parsedURL.RawQuery = query.Encode()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{
		Timeout: timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, &Error{
			Source:  urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			Source:  urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{
			Source:  urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		Source:      urlStr,
		Body:        bodyBytes,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			Source:  urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}

// File reads a payload from the local filesystem. A file:// prefix is accepted.
func File(path string) (*Result, error) {
	name := strings.TrimPrefix(path, "file://")
	if name == "" {
		return nil, &Error{Source: path, Message: "empty path"}
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, &Error{
			Source:  path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	return &Result{Source: path, Body: data}, nil
}

// ExtractText returns the visible text of an HTML fragment, one line per block
// of text. Plain text passes through with its whitespace normalized.
func ExtractText(fragment string) (string, error) {
	if !strings.Contains(fragment, "<") {
		return cleanWhitespace(fragment), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(doc.Text()), nil
}

// cleanWhitespace trims every line and drops empty ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
