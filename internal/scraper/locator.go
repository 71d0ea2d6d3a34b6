package scraper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"cardeals/internal/extract"
)

// ListingSelectors run from most to least specific.
var ListingSelectors = []string{
	"div.l",
	"div.o",
	"div#content div.l",
	"div#content div.o",
	`div[class*="searchResultsItem"]`,
	`div[class*="result-item"]`,
	`div[class*="listItem"]`,
	"div.item",
}

// heuristicElements are scanned when no selector matches.
const heuristicElements = "div, article, section, li"

const (
	minIndicators = 2
	minBlockText  = 50
	debugSample   = 5
	logSample     = 3
)

// Containers the site uses for search meta information, never listings.
var (
	deniedClasses = []string{"resultsInfoBox", "paramsFromSearchText"}
	deniedIDs     = []string{"paramsFromSearchText"}
)

type Locator struct {
	log      logrus.FieldLogger
	debugDir string
}

func NewLocator(log logrus.FieldLogger, debugDir string) *Locator {
	return &Locator{log: log.WithField("component", "locator"), debugDir: debugDir}
}

// Locate returns candidate listing blocks in document order without
// duplicates. Matches of every selector accumulate.
func (l *Locator) Locate(doc *goquery.Document) []*goquery.Selection {
	candidates := doc.Find(strings.Join(ListingSelectors, ", "))
	if candidates.Length() == 0 {
		candidates = doc.Find(heuristicElements).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return LooksLikeListing(s)
		})
	}

	var blocks []*goquery.Selection
	candidates.Each(func(_ int, s *goquery.Selection) {
		if !denied(s) {
			blocks = append(blocks, s)
		}
	})

	l.sample(blocks)
	return blocks
}

// LooksLikeListing reports whether a block carries enough listing vocabulary
// and enough text to not be a header or an ad.
func LooksLikeListing(s *goquery.Selection) bool {
	text := strings.TrimSpace(s.Text())
	return extract.CountIndicators(text) >= minIndicators && len([]rune(text)) > minBlockText
}

func denied(s *goquery.Selection) bool {
	for _, class := range deniedClasses {
		if s.HasClass(class) {
			return true
		}
	}
	id, _ := s.Attr("id")
	for _, deniedID := range deniedIDs {
		if id == deniedID {
			return true
		}
	}
	return false
}

func (l *Locator) sample(blocks []*goquery.Selection) {
	for i, block := range blocks {
		if i >= logSample {
			break
		}
		text := []rune(extract.CleanText(block.Text()))
		if len(text) > 120 {
			text = text[:120]
		}
		l.log.Debugf("Example listing %d: %s", i+1, string(text))
	}

	if l.debugDir == "" || len(blocks) == 0 {
		return
	}

	var b strings.Builder
	for i, block := range blocks {
		if i >= debugSample {
			break
		}
		rendered, err := goquery.OuterHtml(block)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "\n<!-- Listing Candidate %d -->\n%s\n\n", i+1, rendered)
	}

	path := filepath.Join(l.debugDir, "debug_first_listing.html")
	if err := os.MkdirAll(l.debugDir, 0o755); err != nil {
		l.log.Warnf("Could not create %s: %v", l.debugDir, err)
		return
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		l.log.Warnf("Could not save %s: %v", path, err)
		return
	}
	l.log.Debugf("Saved first %d listing candidates to %s", min(len(blocks), debugSample), path)
}
