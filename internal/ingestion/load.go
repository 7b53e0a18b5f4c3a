package ingestion

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wakti/wakti-nlp/internal/fetch"
	"github.com/wakti/wakti-nlp/internal/types"
)

const (
	formatJSON = "json"
	formatHTML = "html"
)

// renderWithBrowser is swapped out in tests.
var renderWithBrowser = fetch.BrowserSimple

// Options configures FromURL and FromFile.
type Options struct {
	// Engine overrides engine detection for HTML input.
	Engine fetch.Engine
	// Fetcher is used instead of a plain HTTP fetch when set.
	Fetcher *fetch.CachedFetcher
	// FetchOptions applies when Fetcher is nil.
	FetchOptions *fetch.Options
	// UseBrowser renders the page in headless Chrome when plain HTML yields no results.
	UseBrowser bool
	Logger     *zap.Logger
}

func (o *Options) logger() *zap.Logger {
	if o == nil || o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Parse turns raw JSON or HTML into snippets. format may be "json", "html"
// or empty to sniff the content.
func Parse(raw []byte, source, format string, engine fetch.Engine) ([]types.SearchSnippet, *Metadata, error) {
	if format == "" {
		format = formatHTML
		if looksLikeJSON(raw) {
			format = formatJSON
		}
	}

	meta := NewMetadata(raw, source, format)

	var (
		snippets []types.SearchSnippet
		err      error
	)
	switch format {
	case formatJSON:
		snippets, err = decodeSnippetBytes(raw)
	case formatHTML:
		meta.Engine = string(engine)
		snippets, err = ParseResultsHTML(string(raw), engine)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, nil, &LoadError{Source: source, Message: "failed to parse " + format, Cause: err}
	}

	meta.SnippetCount = len(snippets)
	return snippets, meta, nil
}

// FromFile loads snippets from a .json or .html file.
func FromFile(path string, opts *Options) ([]types.SearchSnippet, *Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &LoadError{Source: path, Message: "failed to read file", Cause: err}
	}

	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = formatJSON
	case ".html", ".htm":
		format = formatHTML
	}

	engine := fetch.EngineUnknown
	if opts != nil && opts.Engine != "" {
		engine = opts.Engine
	}

	return Parse(raw, path, format, engine)
}

// FromURL fetches a search API response or results page and extracts its snippets.
func FromURL(ctx context.Context, urlStr string, opts *Options) ([]types.SearchSnippet, *Metadata, error) {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.logger()

	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, nil, &LoadError{Source: urlStr, Message: "invalid URL", Cause: ErrInvalidURL}
	}

	engine := opts.Engine
	if engine == "" {
		engine = fetch.DetectEngine(urlStr)
	}
	logger.Debug("fetching search results", zap.String("url", urlStr), zap.String("engine", string(engine)))

	var page *fetch.Page
	if opts.Fetcher != nil {
		cached, fetchErr := opts.Fetcher.Fetch(ctx, urlStr)
		if fetchErr != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, fetchErr)
		}
		logger.Debug("fetched page", zap.Bool("from_cache", cached.FromCache))
		page = cached.Page
	} else {
		page, err = fetch.Get(ctx, urlStr, opts.FetchOptions)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
		}
	}

	format := ""
	if page.IsJSON() {
		format = formatJSON
	}

	snippets, meta, err := Parse([]byte(page.Body), urlStr, format, engine)
	if err != nil {
		return nil, nil, err
	}

	if meta.Format == formatHTML && len(snippets) == 0 && opts.UseBrowser {
		logger.Info("no results in static HTML, rendering with browser", zap.String("url", urlStr))

		html, browserErr := renderWithBrowser(ctx, urlStr, logger)
		if browserErr != nil {
			// Keep the empty static result if the browser is unavailable.
			logger.Warn("browser rendering failed", zap.Error(browserErr))
			return snippets, meta, nil
		}

		rendered, renderedMeta, err := Parse([]byte(html), urlStr, formatHTML, engine)
		if err != nil {
			return nil, nil, err
		}
		renderedMeta.Rendered = true
		return rendered, renderedMeta, nil
	}

	logger.Debug("extracted snippets", zap.Int("count", meta.SnippetCount))
	return snippets, meta, nil
}
