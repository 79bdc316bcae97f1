// Package extract turns rich message bodies into the plain text the
// classifier was trained on.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// PlainText returns the visible text of an HTML document or fragment, with
// scripts, styles and head content removed and whitespace collapsed.
func PlainText(body string) (string, error) {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style, head, noscript, template").Remove()

	var parts []string
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " "), nil
}
