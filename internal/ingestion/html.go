package ingestion

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wakti/wakti-nlp/internal/fetch"
	"github.com/wakti/wakti-nlp/internal/types"
)

// ParseResultsHTML extracts snippets from a search-results page. When the
// engine's own selectors find nothing, the generic selectors are tried.
func ParseResultsHTML(html string, engine fetch.Engine) ([]types.SearchSnippet, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	if noise := strings.Join(fetch.EngineNoiseSelectors(engine), ", "); noise != "" {
		doc.Find(noise).Remove()
	}

	snippets := extractResults(doc, fetch.EngineResultSelectors(engine))
	if len(snippets) == 0 && engine != fetch.EngineUnknown {
		snippets = extractResults(doc, fetch.EngineResultSelectors(fetch.EngineUnknown))
	}
	return snippets, nil
}

func extractResults(doc *goquery.Document, sel fetch.ResultSelectors) []types.SearchSnippet {
	snippets := []types.SearchSnippet{}

	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		title := collapse(item.Find(sel.Title).First().Text())
		href, _ := item.Find(sel.Link).First().Attr("href")
		link := resolveLink(href)
		if title == "" && link == "" {
			return
		}

		snippets = append(snippets, types.SearchSnippet{
			Title:   title,
			URL:     link,
			Content: collapse(item.Find(sel.Snippet).First().Text()),
		})
	})

	return snippets
}

// resolveLink unwraps redirect links such as DuckDuckGo's /l/?uddg= and
// completes protocol-relative URLs.
func resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	for _, param := range []string{"uddg", "url", "q"} {
		if target := u.Query().Get(param); strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			return target
		}
	}
	return href
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
