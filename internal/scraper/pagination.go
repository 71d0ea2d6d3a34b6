package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var pageHref = regexp.MustCompile(`(?:[?&]page=|/p-)(\d+)`)

var nextWords = []string{"напред", "next", "›"}

// TotalPages reads the pagination anchors of a search page. Explicit page
// numbers win; a bare "next" link means at least two pages.
func TotalPages(doc *goquery.Document) int {
	highest := 0
	hasNext := false

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		lower := strings.ToLower(text)
		for _, word := range nextWords {
			if strings.Contains(lower, word) {
				hasNext = true
			}
		}

		if n, err := strconv.Atoi(text); err == nil && n > 0 {
			highest = max(highest, n)
			return
		}
		if m := pageHref.FindStringSubmatch(a.AttrOr("href", "")); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				highest = max(highest, n)
			}
		}
	})

	switch {
	case highest > 0:
		return highest
	case hasNext:
		return 2
	default:
		return 1
	}
}
