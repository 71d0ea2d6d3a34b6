package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cardeals/internal/extract"
	"cardeals/internal/listing"
)

// ParseBlock turns one listing block into a record. The second value is false
// when the block is not a listing or lacks the price or a known brand.
func ParseBlock(s *goquery.Selection) (listing.Record, bool) {
	if !s.HasClass("item") {
		return listing.Record{}, false
	}

	title := s.Find("a.title").First()
	if title.Length() == 0 {
		return listing.Record{}, false
	}

	r := listing.Record{
		Currency:   listing.CurrencyBGN,
		SourceSite: listing.SourceSite,
		ImageURLs:  []string{},
	}
	r.Brand, r.Model, r.Year = extract.ParseTitle(strings.TrimSpace(title.Text()))
	if href, ok := title.Attr("href"); ok {
		r.ListingURL = absoluteURL(href)
	}

	if price := s.Find("div.price > div").First(); price.Length() > 0 {
		r.Price = extract.ExtractPrice(extract.CleanText(price.Text()))
	}

	var tokens []string
	s.Find("div.params").First().Find("span").Each(func(_ int, span *goquery.Selection) {
		tokens = append(tokens, span.Text())
	})
	attrs := extract.ParseAttributes(tokens)
	if r.Year == nil {
		r.Year = attrs.Year
	}
	r.Kilometers = attrs.Kilometers
	r.Color = attrs.Color
	r.EngineType = attrs.EngineType
	r.EnginePower = attrs.EnginePower
	r.EngineDisplacement = attrs.EngineDisplacement
	r.GearboxType = attrs.GearboxType
	r.Doors = attrs.Doors
	r.Seats = attrs.Seats

	if loc := s.Find("div.seller .location").First(); loc.Length() > 0 {
		r.Location = extract.ExtractLocation(extract.CleanText(loc.Text()))
	}
	if dealer := s.Find("div.seller .name a").First(); dealer.Length() > 0 {
		r.DealerName = extract.CleanText(dealer.Text())
	}

	s.Find("div.photo img.pic").Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("src", "")
		if src == "" {
			src = img.AttrOr("data-src", "")
		}
		if src != "" {
			r.ImageURLs = append(r.ImageURLs, absoluteURL(src))
		}
	})

	if info := s.Find("div.info").First(); info.Length() > 0 {
		r.Description = extract.CleanText(info.Text())
	}

	return r, r.Emittable()
}

func absoluteURL(href string) string {
	href = strings.TrimSpace(href)
	switch {
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return BaseURL + href
	default:
		return href
	}
}
