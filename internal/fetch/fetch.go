// Package fetch downloads search-engine result pages and reduces them to
// the text of the result list.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultTimeout bounds one page download.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBodyBytes caps how much of a results page is read.
	DefaultMaxBodyBytes = 5 << 20
	// DefaultUserAgent identifies the classifier to search engines.
	DefaultUserAgent = "Mozilla/5.0 (compatible; WaktiNLP/1.0)"
)

var errInvalidURL = errors.New("invalid URL: need an http(s) address")

// acceptResults asks for a results page or a JSON results feed.
const acceptResults = "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.5"

// pageChrome is stripped from every results page before its text is taken.
var pageChrome = []string{"script", "style", "noscript", "svg", "header", "footer", "nav"}

// Page is one downloaded results page.
type Page struct {
	URL         string
	Body        string
	Text        string
	ContentType string
	StatusCode  int
}

// IsJSON reports whether the page is a JSON results feed rather than HTML.
func (p *Page) IsJSON() bool {
	return strings.Contains(strings.ToLower(p.ContentType), "json")
}

// Error is returned when a results page cannot be downloaded.
// Status is set when the engine answered with a non-200 code.
type Error struct {
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("fetch %s: search engine answered %d", e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("fetch %s: failed", e.URL)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options configures page downloads.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxBodyBytes int64
}

// DefaultOptions returns the download settings used by the CLI and the server.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Get downloads a results page. On a non-200 answer the page is returned
// together with an *Error carrying the status.
func Get(ctx context.Context, pageURL string, opts *Options) (*Page, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, &Error{URL: pageURL, Err: err}
	}
	if parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, &Error{URL: pageURL, Err: errInvalidURL}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &Error{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", acceptResults)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: opts.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: pageURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	limit := opts.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, &Error{URL: pageURL, Err: fmt.Errorf("read body: %w", err)}
	}

	page := &Page{
		URL:         pageURL,
		Body:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return page, &Error{URL: pageURL, Status: resp.StatusCode}
	}
	return page, nil
}

// resultContainers lists where an engine keeps its result list, most specific first.
func resultContainers(engine Engine) []string {
	var own []string
	switch engine {
	case EngineDuckDuckGo:
		own = []string{"#links", ".results"}
	case EngineBing:
		own = []string{"#b_results"}
	case EngineGoogle:
		own = []string{"#rso", "#search"}
	case EngineSearxng:
		own = []string{"#urls", "#results"}
	}
	return append(own, "main", "[role=main]", "article")
}

// ResultsText returns the text of the result list on an engine's page,
// one line per text block. Ads, consent banners and page chrome are dropped.
// The whole body is used when the engine's result container is missing.
func ResultsText(html string, engine Engine) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse results page: %w", err)
	}

	doc.Find(strings.Join(pageChrome, ", ")).Remove()
	doc.Find(strings.Join(EngineNoiseSelectors(engine), ", ")).Remove()

	list := doc.Find("body")
	for _, selector := range resultContainers(engine) {
		if found := doc.Find(selector); found.Length() > 0 {
			list = found.First()
			break
		}
	}

	return nonEmptyLines(list.Text()), nil
}

func nonEmptyLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
