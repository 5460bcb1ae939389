package crawl

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/assesskit/assessrec/internal/catalog"
)

const siteRoot = "https://www.shl.com"

// ParseCatalogPage extracts assessment rows from a catalog listing page.
// Column layout: name link, remote support marker, adaptive support marker,
// test type keys, duration.
func ParseCatalogPage(r io.Reader) ([]catalog.Assessment, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var items []catalog.Assessment
	for _, table := range findAll(root, "table") {
		rows := findAll(table, "tr")
		if len(rows) < 2 {
			continue
		}
		for _, row := range rows[1:] {
			cells := findAll(row, "td")
			if len(cells) < 4 {
				continue
			}

			link := findFirst(cells[0], "a")
			if link == nil {
				continue
			}

			href := attr(link, "href")
			if href != "" && !strings.HasPrefix(href, "http") {
				href = siteRoot + href
			}

			item := catalog.Assessment{
				Name:            nodeText(link),
				URL:             href,
				RemoteSupport:   yesNo(hasMarkerSpan(cells[1])),
				AdaptiveSupport: yesNo(hasMarkerSpan(cells[2])),
				TestTypes:       typeKeys(cells[3]),
			}
			if len(cells) > 4 {
				item.Duration = nodeText(cells[4])
			}

			items = append(items, item)
		}
	}
	return items, nil
}

// ParseDescription pulls a short description from an assessment detail
// page: the meta description when present, otherwise the first paragraphs
// of the main content. The result is bounded to 500 characters.
func ParseDescription(r io.Reader) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	for _, meta := range findAll(root, "meta") {
		if attr(meta, "name") == "description" {
			if content := strings.TrimSpace(attr(meta, "content")); content != "" {
				return truncate(content, 500), nil
			}
		}
	}

	main := findFirst(root, "main")
	if main == nil {
		main = findFirst(root, "article")
	}
	if main == nil {
		return "", nil
	}

	var parts []string
	for i, p := range findAll(main, "p") {
		if i >= 3 {
			break
		}
		if text := nodeText(p); text != "" {
			parts = append(parts, text)
		}
	}
	return truncate(strings.Join(parts, " "), 500), nil
}

func hasMarkerSpan(cell *html.Node) bool {
	for _, span := range findAll(cell, "span") {
		if strings.Contains(attr(span, "class"), "catalogue__circle--yes") {
			return true
		}
	}
	return false
}

func typeKeys(cell *html.Node) []string {
	keys := []string{}
	for _, span := range findAll(cell, "span") {
		if !strings.Contains(attr(span, "class"), "product-catalogue__key") {
			continue
		}
		switch text := nodeText(span); text {
		case catalog.TypeKnowledge, catalog.TypePersonality, catalog.TypeSimulation:
			keys = append(keys, text)
		}
	}
	return keys
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var words []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			words = append(words, strings.Fields(node.Data)...)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(words, " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
