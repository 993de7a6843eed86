package ingestion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTagRe = regexp.MustCompile(`(?i)<(html|body|div|p|br|ul|ol|li|h[1-6]|span|strong|em|b|section|article|table|tr|td)\b[^>]*>`)

// blockSelectors are placed on their own lines when converted to text.
const blockSelectors = "p, div, h1, h2, h3, h4, h5, h6, tr, section, article, ul, ol, header"

// LooksLikeHTML reports whether text contains recognizable HTML markup
func LooksLikeHTML(text string) bool {
	return htmlTagRe.MatchString(text)
}

// StripHTML converts an HTML fragment or page into plain text, keeping list
// items as "- " bullets and block elements on their own lines.
func StripHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, footer, iframe, svg, .cookie-banner, .popup").Remove()

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n- ")
		s.AppendHtml("\n")
	})
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
		s.AppendHtml("\n")
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return CleanText(cleanWhitespace(root.Text())), nil
}

// cleanWhitespace trims every line and drops the empty ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
