package scraper

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"cardeals/internal/createddate"
	"cardeals/internal/fetcher"
)

// PipelineOptions configure the production crawler.
type PipelineOptions struct {
	Fetch fetcher.Options
	// DebugDir receives the last fetched page and a sample of listing
	// blocks. Empty disables both.
	DebugDir string
	// CreatedDates enables detail page fetches for every listing.
	CreatedDates bool
	HistoryURL   string
	// Cache memoizes created dates across crawls. May be nil.
	Cache CreatedDateCache
}

func NewPipeline(opts PipelineOptions, log logrus.FieldLogger) *Crawler {
	fetchOpts := opts.Fetch
	if opts.DebugDir != "" && fetchOpts.DebugFile == "" {
		fetchOpts.DebugFile = filepath.Join(opts.DebugDir, "debug_mobile_bg.html")
	}
	f := fetcher.New(fetchOpts, log)

	crawler := NewCrawler(f, NewLocator(log, opts.DebugDir), log)
	if !opts.CreatedDates {
		return crawler
	}

	history := createddate.NewHistoryClient(opts.HistoryURL, fetchOpts.RequestTimeout, log)
	return crawler.WithResolver(createddate.New(f, history, log), opts.Cache)
}
