package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"cardeals/internal/database"
	"cardeals/internal/kafka"
	"cardeals/internal/listing"
	"cardeals/internal/report"
	"cardeals/internal/scraper"
)

var errBrandRequired = errors.New("--brand is required unless --print-db, --clear-db or --skip-scrape is used")

type options struct {
	params        listing.SearchParams
	maxPages      int
	output        string
	verbose       bool
	useDB         bool
	clearDB       bool
	printDB       bool
	skipScrape    bool
	useCache      bool
	publish       bool
	noCreatedDate bool
	debugDir      string
}

// storeOnly reports whether the run touches the store and never the site.
func (o options) storeOnly() bool {
	return o.clearDB || o.printDB || o.skipScrape
}

func (o options) needsStore() bool {
	return o.useDB || o.storeOnly()
}

func (o options) validate() error {
	if !o.storeOnly() && o.params.Brand == "" {
		return errBrandRequired
	}
	if o.params.Brand != "" {
		if err := o.params.Validate(); err != nil {
			return err
		}
	}
	if o.publish && !o.useDB {
		return errors.New("--publish needs --use-db to tell new listings apart")
	}
	return nil
}

type carStore interface {
	SyncCrawl(searchURL string, records []listing.Record, at time.Time) (database.SyncStats, error)
	GetAllCars() ([]database.Car, error)
	ClearCars() error
}

type resultCache interface {
	GetCachedResults(ctx context.Context, searchURL string) ([]listing.Record, bool)
	CacheResults(ctx context.Context, searchURL string, records []listing.Record) error
}

type listingPublisher interface {
	PublishNewListings(ctx context.Context, event kafka.NewListingsEvent) error
}

// runner executes one command invocation against injected collaborators.
// Only scraper is required; the rest are nil when the flags do not ask
// for them.
type runner struct {
	scraper   scraper.Scraper
	store     carStore
	cache     resultCache
	publisher listingPublisher
	out       io.Writer
	log       logrus.FieldLogger
	now       func() time.Time
}

func (r *runner) run(ctx context.Context, o options) error {
	if o.clearDB {
		if err := r.store.ClearCars(); err != nil {
			return fmt.Errorf("clear store: %w", err)
		}
		r.log.Info("Database cleared")
		return nil
	}

	if o.printDB || o.skipScrape {
		cars, err := r.store.GetAllCars()
		if err != nil {
			return fmt.Errorf("read store: %w", err)
		}
		return r.write(o.output, report.FromCars(cars, r.now()))
	}

	searchURL := scraper.BuildSearchURL(o.params)
	r.log.Debugf("Search URL: %s", searchURL)
	r.log.Infof("🚗 Starting car search for %s %s", o.params.Brand, o.params.Model)

	records, crawlErr := r.crawl(ctx, o, searchURL)

	if crawlErr == nil && r.store != nil {
		stats, err := r.store.SyncCrawl(searchURL, records, r.now())
		if err != nil {
			return fmt.Errorf("store crawl: %w", err)
		}
		r.log.Infof("[DB] Updated %d cars, marked %d as removed", stats.Upserted, stats.Removed)

		if o.publish && r.publisher != nil && len(stats.New) > 0 {
			event := kafka.NewListingsEvent{
				SearchName: o.params.Brand + " " + o.params.Model,
				SearchURL:  searchURL,
				Listings:   stats.New,
				FoundAt:    r.now(),
			}
			if err := r.publisher.PublishNewListings(ctx, event); err != nil {
				r.log.WithError(err).Warn("Publishing new listings failed")
			}
		}
	}

	if err := r.write(o.output, report.FromRecords(o.params, searchURL, records, r.now())); err != nil {
		return err
	}
	return crawlErr
}

func (r *runner) crawl(ctx context.Context, o options, searchURL string) ([]listing.Record, error) {
	if o.useCache && r.cache != nil {
		if cached, ok := r.cache.GetCachedResults(ctx, searchURL); ok {
			r.log.Infof("⚡ Using %d cached results", len(cached))
			return cached, nil
		}
	}

	result, err := r.scraper.Crawl(ctx, o.params, o.maxPages)
	if err != nil {
		return nil, err
	}
	if len(result.FailedPages) > 0 {
		r.log.Warnf("Pages %v could not be fetched", result.FailedPages)
	}
	r.log.Infof("Completed scraping. Total unique cars found: %d", len(result.Records))

	if o.useCache && r.cache != nil {
		if err := r.cache.CacheResults(ctx, searchURL, result.Records); err != nil {
			r.log.WithError(err).Warn("Caching results failed")
		}
	}
	return result.Records, nil
}

func (r *runner) write(path string, doc report.Document) error {
	if path == "" {
		return doc.Write(r.out)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := doc.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	r.log.Infof("✅ Results saved to %s", path)
	return nil
}
