package fanout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/veritas-check/veritas/internal/search"
)

// Extraction holds structured page content pulled from one URL.
type Extraction struct {
	Title       string
	MainContent string
	Description string
	Author      string
	PublishDate string
	Domain      string
	WordCount   int

	// FromMainPath is true when content came from an article/main/content
	// selector rather than the paragraph fallback.
	FromMainPath bool
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// ExtractPage fetches a URL and extracts article content. It prefers the
// page's article/main/content containers and falls back to paragraph text.
func ExtractPage(ctx context.Context, client *http.Client, pageURL string) (*Extraction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; veritas/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") && !strings.Contains(contentType, "text") {
		return nil, fmt.Errorf("unsupported content type %s", contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	ext, err := extractFromHTML(string(body))
	if err != nil {
		return nil, err
	}
	ext.Domain = search.DomainOf(pageURL)
	return ext, nil
}

func extractFromHTML(htmlContent string) (*Extraction, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	ext := &Extraction{}
	collectMeta(doc, ext)

	if node := findMainContainer(doc); node != nil {
		ext.MainContent = collapseWhitespace(nodeText(node))
		ext.FromMainPath = true
	}
	if ext.MainContent == "" {
		ext.MainContent = collapseWhitespace(paragraphText(doc))
		ext.FromMainPath = false
	}

	ext.WordCount = len(strings.Fields(ext.MainContent))
	return ext, nil
}

// collectMeta walks the head for title, description, author and publish date.
func collectMeta(n *html.Node, ext *Extraction) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if ext.Title == "" {
				ext.Title = collapseWhitespace(nodeText(n))
			}
		case "meta":
			name := strings.ToLower(attr(n, "name"))
			property := strings.ToLower(attr(n, "property"))
			content := attr(n, "content")
			switch {
			case name == "description" || property == "og:description":
				if ext.Description == "" {
					ext.Description = content
				}
			case name == "author":
				if ext.Author == "" {
					ext.Author = content
				}
			case property == "article:published_time" || name == "date" || name == "publish-date":
				if ext.PublishDate == "" {
					ext.PublishDate = content
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectMeta(c, ext)
	}
}

// findMainContainer returns the first article/main element, or a div whose
// id or class mentions content.
func findMainContainer(doc *html.Node) *html.Node {
	var article, main, contentDiv *html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "article":
				if article == nil {
					article = n
				}
			case "main":
				if main == nil {
					main = n
				}
			case "div":
				if contentDiv == nil {
					marker := strings.ToLower(attr(n, "id") + " " + attr(n, "class"))
					if strings.Contains(marker, "article") || strings.Contains(marker, "content") || strings.Contains(marker, "post-body") {
						contentDiv = n
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if article != nil {
		return article
	}
	if main != nil {
		return main
	}
	return contentDiv
}

// paragraphText is the fallback path: all paragraph text in document order.
func paragraphText(doc *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElement(n.Data) {
				return
			}
			if n.Data == "p" {
				sb.WriteString(nodeText(n))
				sb.WriteString(" ")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sb.String()
}

// nodeText returns visible text under a node, skipping script/style/nav
// chrome.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
			return
		}
		if n.Type == html.ElementNode && skippedElement(n.Data) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func skippedElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "nav", "header", "footer", "aside", "form", "iframe", "svg":
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// truncate cuts s to at most max runes without splitting a word when it can
// avoid it.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndex(cut, " "); idx > max/2 {
		cut = cut[:idx]
	}
	return cut
}
