package createddate

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"cardeals/internal/extract"
)

// Detail is one fetched listing page as seen by the tiers.
type Detail struct {
	URL  string
	Doc  *goquery.Document
	HTML string
	// Text is the whitespace-collapsed page text.
	Text string
	// Now is the resolution time, used when a history entry carries no year.
	Now time.Time
}

func NewDetail(listingURL string, doc *goquery.Document, now time.Time) *Detail {
	d := &Detail{URL: listingURL, Doc: doc, Now: now}
	if doc != nil {
		d.HTML, _ = doc.Html()
		d.Text = extract.CleanText(doc.Text())
	}
	return d
}
