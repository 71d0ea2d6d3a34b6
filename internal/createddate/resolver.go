package createddate

import (
	"context"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, params url.Values) (*goquery.Document, error)
}

// Resolver fetches a listing's detail page and runs the tiers in order until
// one of them produces a date.
type Resolver struct {
	fetcher PageFetcher
	tiers   []Tier
	log     logrus.FieldLogger

	Now func() time.Time
}

// New builds the default chain. A nil history disables the dynamic tier.
func New(fetcher PageFetcher, history HistoryQuerier, log logrus.FieldLogger) *Resolver {
	log = log.WithField("component", "created_date")

	var tiers []Tier
	if history != nil {
		tiers = append(tiers, DynamicTier{History: history, Log: log})
	}
	tiers = append(tiers, StaticHistoryTier{}, PlainTextTier{})

	return NewWithTiers(fetcher, log, tiers...)
}

func NewWithTiers(fetcher PageFetcher, log logrus.FieldLogger, tiers ...Tier) *Resolver {
	return &Resolver{fetcher: fetcher, tiers: tiers, log: log, Now: time.Now}
}

// Resolve reports false when the page cannot be fetched or no tier matched.
func (r *Resolver) Resolve(ctx context.Context, listingURL string) (string, bool) {
	log := r.log.WithField("listing_url", listingURL)

	doc, err := r.fetcher.Fetch(ctx, listingURL, nil)
	if err != nil {
		log.WithError(err).Warn("Could not fetch listing detail page")
		return "", false
	}
	return r.ResolveDetail(ctx, NewDetail(listingURL, doc, r.Now()))
}

func (r *Resolver) ResolveDetail(ctx context.Context, d *Detail) (string, bool) {
	for _, tier := range r.tiers {
		if date, ok := tier.Resolve(ctx, d); ok {
			r.log.WithField("tier", tier.Name()).Debugf("Created date %s for %s", date, d.URL)
			return date, true
		}
	}
	return "", false
}
