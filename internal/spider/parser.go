package spider

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is one anchor discovered on a page, resolved to an absolute URL.
type Link struct {
	// URL is the resolved absolute URL.
	URL *url.URL

	// Text is the anchor's trimmed inner text.
	Text string

	// Rel is the anchor's rel attribute.
	Rel string
}

// PageInfo is what the HTML parser extracts in one pass over a document.
type PageInfo struct {
	// Title is the page title from the <title> tag.
	Title string

	// Links are all resolved anchors on the page.
	Links []Link

	// NextPage is the pagination target declared via rel="next" on an
	// anchor or <link> element. Nil when the page declares none.
	NextPage *url.URL

	// MetaTags maps meta tag names (or OpenGraph properties) to content.
	MetaTags map[string]string
}

// ParseHTML extracts links, the title, pagination hints, and meta tags
// from an HTML document. Relative URLs are resolved against base.
// Malformed markup is tolerated; html.Parse repairs what it can.
func ParseHTML(content io.Reader, base *url.URL) (*PageInfo, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	info := &PageInfo{
		MetaTags: make(map[string]string),
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			processElement(n, base, info)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return info, nil
}

// processElement handles one HTML element node.
func processElement(n *html.Node, base *url.URL, info *PageInfo) {
	switch n.Data {
	case "title":
		if info.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			info.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "a":
		href := getAttr(n, "href")
		resolved := resolveURL(base, href)
		if resolved == nil {
			return
		}
		link := Link{
			URL:  resolved,
			Text: strings.TrimSpace(nodeText(n)),
			Rel:  getAttr(n, "rel"),
		}
		info.Links = append(info.Links, link)
		if info.NextPage == nil && hasRel(link.Rel, "next") {
			info.NextPage = resolved
		}

	case "link":
		if info.NextPage == nil && hasRel(getAttr(n, "rel"), "next") {
			info.NextPage = resolveURL(base, getAttr(n, "href"))
		}

	case "meta":
		name := getAttr(n, "name")
		if name == "" {
			// OpenGraph tags use property instead of name.
			name = getAttr(n, "property")
		}
		content := getAttr(n, "content")
		if name != "" && content != "" {
			info.MetaTags[name] = content
		}
	}
}

// resolveURL resolves href against base, dropping non-navigational
// schemes. Returns nil when the href does not point at a fetchable page.
func resolveURL(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return nil
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}
	return resolved
}

// hasRel reports whether a space-separated rel attribute contains value.
func hasRel(rel, value string) bool {
	for _, part := range strings.Fields(rel) {
		if strings.EqualFold(part, value) {
			return true
		}
	}
	return false
}

// nodeText collects the text content under a node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
