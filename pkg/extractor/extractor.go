package extractor

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MinContentLength is the acceptance floor for any extraction candidate.
// Shorter matches are navigation or boilerplate, not article text.
const MinContentLength = 200

// ErrNoContent means no candidate on the page met the acceptance floor.
// Distinct from a fetch error: the page loaded, it just has no article we
// can recognize.
var ErrNoContent = errors.New("no meaningful content found")

// Container selectors commonly used by CMSes, tried in order. First match
// above the floor wins.
var containerSelectors = []string{
	"div.ArticleBody-wrapper",
	"div.article-body",
	"div.post-content",
	"div.entry-content",
	"div.article-content",
	"article",
	"div.content",
	"main",
}

// Element ids tried after the container cascade.
var idSelectors = []string{
	"#article",
	"#content",
	"#main-content",
	"#post",
}

type Extractor struct {
	minLength int
}

func New() *Extractor {
	return &Extractor{minLength: MinContentLength}
}

// Extract locates the main article text of a parsed page. The URL is used
// only to attribute failures. The cascade: known container selectors, then
// common element ids, then the concatenation of every paragraph on the
// page. Pure function over its inputs.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string) (string, error) {
	for _, sel := range containerSelectors {
		if text, ok := e.candidate(doc.Find(sel).First()); ok {
			return text, nil
		}
	}

	for _, sel := range idSelectors {
		if text, ok := e.candidate(doc.Find(sel).First()); ok {
			return text, nil
		}
	}

	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if text := collapseWhitespace(strings.Join(parts, " ")); e.accept(text) {
		return text, nil
	}

	return "", fmt.Errorf("%w: %s", ErrNoContent, pageURL)
}

func (e *Extractor) candidate(sel *goquery.Selection) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	text := collapseWhitespace(sel.Text())
	return text, e.accept(text)
}

func (e *Extractor) accept(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) > e.minLength
}

// collapseWhitespace joins all visible text with single spaces, the
// equivalent of get_text(separator=' ', strip=True).
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
