package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"cardeals/internal/listing"
)

// ErrFirstPage is returned when the first search page cannot be fetched. The
// crawl has nothing to paginate from.
var ErrFirstPage = errors.New("first search page failed")

type Scraper interface {
	Crawl(ctx context.Context, params listing.SearchParams, maxPages int) (Result, error)
}

type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, params url.Values) (*goquery.Document, error)
}

// DateResolver finds when a listing was created. It reports false when no
// strategy produced a value.
type DateResolver interface {
	Resolve(ctx context.Context, listingURL string) (string, bool)
}

type CreatedDateCache interface {
	GetCreatedDate(ctx context.Context, listingURL string) (string, bool)
	SetCreatedDate(ctx context.Context, listingURL, date string)
}

type Result struct {
	Records      []listing.Record
	SearchURL    string
	PagesPlanned int
	PagesFetched int
	FailedPages  []int
}

type Crawler struct {
	fetcher  PageFetcher
	locator  *Locator
	resolver DateResolver
	cache    CreatedDateCache
	log      logrus.FieldLogger
}

func NewCrawler(fetcher PageFetcher, locator *Locator, log logrus.FieldLogger) *Crawler {
	return &Crawler{
		fetcher: fetcher,
		locator: locator,
		log:     log.WithField("component", "crawler"),
	}
}

// WithResolver enables created-date enrichment. A nil cache disables
// memoization.
func (c *Crawler) WithResolver(resolver DateResolver, cache CreatedDateCache) *Crawler {
	c.resolver = resolver
	c.cache = cache
	return c
}

// Crawl walks the search result pages for params. Pages after the first are
// best effort: a failed page is logged and skipped. maxPages <= 0 means no cap.
func (c *Crawler) Crawl(ctx context.Context, params listing.SearchParams, maxPages int) (Result, error) {
	searchURL := BuildSearchURL(params)
	result := Result{SearchURL: searchURL}
	log := c.log.WithField("search_url", searchURL)
	log.Info("Starting crawl")

	first, err := c.fetcher.Fetch(ctx, searchURL, nil)
	if err != nil {
		log.WithError(err).Error("Failed to fetch first search page")
		return Result{SearchURL: searchURL}, fmt.Errorf("%w: %w", ErrFirstPage, err)
	}
	result.PagesFetched = 1

	total := TotalPages(first)
	if maxPages > 0 {
		total = min(total, maxPages)
	}
	result.PagesPlanned = total
	log.Infof("Found %d pages to scrape", total)

	records := c.parsePage(ctx, first, params, 1)

	for page := 2; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Crawl cancelled")
			break
		}

		pageLog := log.WithField("page", page)
		doc, err := c.fetcher.Fetch(ctx, PageURL(searchURL, page), nil)
		if err != nil {
			pageLog.WithError(err).Warn("Skipping page")
			result.FailedPages = append(result.FailedPages, page)
			continue
		}
		result.PagesFetched++
		records = append(records, c.parsePage(ctx, doc, params, page)...)
	}

	result.Records = listing.Dedupe(records)
	log.Infof("Crawl finished: %d listings from %d/%d pages", len(result.Records), result.PagesFetched, result.PagesPlanned)
	return result, nil
}

func (c *Crawler) parsePage(ctx context.Context, doc *goquery.Document, params listing.SearchParams, page int) []listing.Record {
	log := c.log.WithField("page", page)
	blocks := c.locator.Locate(doc)
	log.Debugf("Found %d listing candidates", len(blocks))

	var records []listing.Record
	for _, block := range blocks {
		r, ok := ParseBlock(block)
		if !ok {
			continue
		}
		if !params.Matches(r) {
			log.Debugf("Skipping %s: over km limit", r.ListingURL)
			continue
		}
		records = append(records, c.enrich(ctx, r))
	}

	log.Infof("Parsed %d listings", len(records))
	return records
}

func (c *Crawler) enrich(ctx context.Context, r listing.Record) listing.Record {
	if c.resolver == nil || r.ListingURL == "" || ctx.Err() != nil {
		return r
	}

	if c.cache != nil {
		if date, ok := c.cache.GetCreatedDate(ctx, r.ListingURL); ok {
			return r.WithCreatedDate(date)
		}
	}

	date, ok := c.resolver.Resolve(ctx, r.ListingURL)
	if !ok {
		c.log.WithField("listing_url", r.ListingURL).Debug("No created date found")
		return r
	}
	if c.cache != nil {
		c.cache.SetCreatedDate(ctx, r.ListingURL, date)
	}
	return r.WithCreatedDate(date)
}
