package createddate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"cardeals/internal/extract"
)

// Tier is one strategy for finding the created date of a listing. A tier
// that finds nothing reports false; tiers never fail the listing.
type Tier interface {
	Name() string
	Resolve(ctx context.Context, d *Detail) (string, bool)
}

// HistoryQuerier fetches the rendered price history of a listing.
type HistoryQuerier interface {
	History(ctx context.Context, referer, advID, price string) (string, error)
}

var advIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]adv=(\d+)`),
	regexp.MustCompile(`/obiava-(\d+)`),
	regexp.MustCompile(`data-adv(?:-id)?="(\d+)"`),
	regexp.MustCompile(`"adv(?:Id)?"\s*:\s*"?(\d+)`),
}

// Displayed price, most specific first.
var priceSelectors = []string{"#details_price", "div.Price", "span.Price", "div.price", "span.price", `[class*="price"]`}

// DynamicTier asks the price history endpoint for the listing's history.
type DynamicTier struct {
	History HistoryQuerier
	Log     logrus.FieldLogger
}

func (DynamicTier) Name() string { return "dynamic" }

func (t DynamicTier) Resolve(ctx context.Context, d *Detail) (string, bool) {
	if t.History == nil || d.Doc == nil {
		return "", false
	}

	advID := listingID(d)
	if advID == "" {
		return "", false
	}
	price := displayedPrice(d.Doc)
	if price == "" {
		return "", false
	}

	fragment, err := t.History.History(ctx, d.URL, advID, price)
	if err != nil {
		if t.Log != nil {
			t.Log.WithField("adv", advID).Debugf("Price history query failed: %v", err)
		}
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", false
	}
	return fromHistory(extract.CleanText(doc.Text()), d)
}

func listingID(d *Detail) string {
	for _, source := range []string{d.URL, d.HTML} {
		for _, pattern := range advIDPatterns {
			if m := pattern.FindStringSubmatch(source); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

func displayedPrice(doc *goquery.Document) string {
	for _, selector := range priceSelectors {
		var price string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := extract.CleanText(s.Text())
			if p := extract.ExtractPrice(text); p != nil {
				price = fmt.Sprint(*p)
				return false
			}
			return true
		})
		if price != "" {
			return price
		}
	}
	return ""
}

// StaticHistorySelector matches price history widgets rendered into the page.
const StaticHistorySelector = `#priceHistory, .priceHistory, div[class*="price-history"], div[class*="priceHistory"]`

type StaticHistoryTier struct{}

func (StaticHistoryTier) Name() string { return "static_history" }

func (StaticHistoryTier) Resolve(_ context.Context, d *Detail) (string, bool) {
	if d.Doc == nil {
		return "", false
	}
	container := d.Doc.Find(StaticHistorySelector)
	if container.Length() == 0 {
		return "", false
	}
	return fromHistory(extract.CleanText(container.Text()), d)
}

type textPattern struct {
	re *regexp.Regexp
	// Submatch positions of day, month, year, hour, minute. Zero means the
	// pattern has no time part.
	day, month, year, hour, minute int
}

const timeOnDate = `(\d{1,2}):(\d{2})\s*(?:часа|h)?\s+(?:на|on)\s+(\d{1,2})\.(\d{1,2})\.(\d{4})`

var textPatterns = []textPattern{
	{re: regexp.MustCompile(`(?i)(?:публикувана|published)\s+(?:в|at)\s+` + timeOnDate), hour: 1, minute: 2, day: 3, month: 4, year: 5},
	{re: regexp.MustCompile(`(?i)(?:редактирана|edited)\s+(?:в|at)\s+` + timeOnDate), hour: 1, minute: 2, day: 3, month: 4, year: 5},
	{re: regexp.MustCompile(`(?i)` + timeOnDate), hour: 1, minute: 2, day: 3, month: 4, year: 5},
	{re: regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`), day: 1, month: 2, year: 3},
}

// PlainTextTier reads the "Публикувана в HH:MM часа на DD.MM.YYYY" line and
// progressively looser variants of it.
type PlainTextTier struct{}

func (PlainTextTier) Name() string { return "plain_text" }

func (PlainTextTier) Resolve(_ context.Context, d *Detail) (string, bool) {
	for _, p := range textPatterns {
		for _, m := range p.re.FindAllStringSubmatch(d.Text, -1) {
			if date, ok := p.format(m); ok {
				return date, true
			}
		}
	}
	return "", false
}

func (p textPattern) format(m []string) (string, bool) {
	year, month, day := atoi(m[p.year]), atoi(m[p.month]), atoi(m[p.day])
	hour, minute := 0, 0
	if p.hour > 0 {
		hour, minute = atoi(m[p.hour]), atoi(m[p.minute])
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day || t.Hour() != hour || t.Minute() != minute {
		return "", false
	}
	if p.hour == 0 {
		return t.Format("2006-01-02"), true
	}
	return t.Format("2006-01-02 15:04:05"), true
}
