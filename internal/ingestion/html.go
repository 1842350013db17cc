package ingestion

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// noiseSelector lists elements that never carry CV content
const noiseSelector = "script, style, noscript, template, nav, footer, iframe, svg, form"

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "tr": true, "ul": true,
}

// convertHTML renders an HTML document to text with one line per block
// element. List items become "- " bullets so segmentation sees the same
// structure as in a text CV.
func convertHTML(_ context.Context, r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	doc.Find(noiseSelector).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var sb strings.Builder
	root.Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			renderNode(&sb, n)
		}
	})
	return sb.String(), nil
}

func renderNode(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		text := strings.Join(strings.Fields(n.Data), " ")
		if text == "" {
			if n.Data != "" {
				sb.WriteByte(' ')
			}
			return
		}
		if strings.TrimLeft(n.Data, " \t\r\n") != n.Data {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
		if strings.TrimRight(n.Data, " \t\r\n") != n.Data {
			sb.WriteByte(' ')
		}
		return
	case html.ElementNode, html.DocumentNode:
	default:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		sb.WriteByte('\n')
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "li":
			sb.WriteString("- ")
		case "td", "th":
			sb.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(sb, c)
	}
	if block {
		sb.WriteByte('\n')
	}
}
