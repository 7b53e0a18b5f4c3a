package fetch

import (
	"net/url"
	"strings"
)

// Engine is a known search-engine results page layout.
type Engine string

const (
	// EngineDuckDuckGo is the html.duckduckgo.com results page
	EngineDuckDuckGo Engine = "duckduckgo"
	// EngineBing is the Bing results page
	EngineBing Engine = "bing"
	// EngineGoogle is the Google results page
	EngineGoogle Engine = "google"
	// EngineSearxng is a SearXNG instance
	EngineSearxng Engine = "searxng"
	// EngineUnknown is an unrecognized page
	EngineUnknown Engine = "unknown"
)

// DetectEngine identifies the search engine from a results-page URL.
func DetectEngine(urlStr string) Engine {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return EngineUnknown
	}

	host := strings.ToLower(parsed.Hostname())

	switch {
	case strings.Contains(host, "duckduckgo.com"):
		return EngineDuckDuckGo
	case strings.Contains(host, "bing.com"):
		return EngineBing
	case host == "google.com" || strings.HasSuffix(host, ".google.com") || strings.Contains(host, "google."):
		return EngineGoogle
	case strings.Contains(host, "searx"):
		return EngineSearxng
	}

	return EngineUnknown
}

// ParseEngine maps a name to an Engine, returning EngineUnknown for
// anything unrecognized.
func ParseEngine(name string) Engine {
	switch e := Engine(strings.ToLower(strings.TrimSpace(name))); e {
	case EngineDuckDuckGo, EngineBing, EngineGoogle, EngineSearxng:
		return e
	default:
		return EngineUnknown
	}
}

// ResultSelectors locate the parts of one search result.
// Title, Link and Snippet are evaluated inside each Item.
type ResultSelectors struct {
	Item    string
	Title   string
	Link    string
	Snippet string
}

// EngineResultSelectors returns the result selectors for an engine.
func EngineResultSelectors(engine Engine) ResultSelectors {
	switch engine {
	case EngineDuckDuckGo:
		return ResultSelectors{
			Item:    ".result",
			Title:   ".result__a",
			Link:    ".result__a",
			Snippet: ".result__snippet",
		}
	case EngineBing:
		return ResultSelectors{
			Item:    "li.b_algo",
			Title:   "h2",
			Link:    "h2 a",
			Snippet: ".b_caption p",
		}
	case EngineGoogle:
		return ResultSelectors{
			Item:    "div.g",
			Title:   "h3",
			Link:    "a[href]",
			Snippet: ".VwiC3b, .IsZvec",
		}
	case EngineSearxng:
		return ResultSelectors{
			Item:    "article.result",
			Title:   "h3",
			Link:    "h3 a",
			Snippet: "p.content",
		}
	default:
		return ResultSelectors{
			Item:    ".result, .search-result, article",
			Title:   "h2, h3",
			Link:    "a[href]",
			Snippet: "p, .snippet, .description",
		}
	}
}

// EngineNoiseSelectors returns elements to remove from an engine's results page.
func EngineNoiseSelectors(engine Engine) []string {
	common := []string{
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
		"form",
	}

	switch engine {
	case EngineDuckDuckGo:
		return append(common, ".result--ad", ".badge--ad")
	case EngineBing:
		return append(common, ".b_ad", "#b_context")
	case EngineGoogle:
		return append(common, "#tads", "#bottomads", ".commercial-unit-desktop-top")
	default:
		return append(common, ".ad", ".sponsored")
	}
}
