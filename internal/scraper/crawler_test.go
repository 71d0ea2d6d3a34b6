package scraper

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardeals/internal/listing"
)

type fakeFetcher struct {
	t     *testing.T
	pages map[string]string
	fails map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string, _ url.Values) (*goquery.Document, error) {
	f.calls = append(f.calls, rawURL)
	if err, ok := f.fails[rawURL]; ok {
		return nil, err
	}
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, errors.New("unexpected url " + rawURL)
	}
	return parseDoc(f.t, body), nil
}

type fakeResolver struct {
	dates map[string]string
	calls int
}

func (r *fakeResolver) Resolve(_ context.Context, listingURL string) (string, bool) {
	r.calls++
	date, ok := r.dates[listingURL]
	return date, ok
}

type mapCache map[string]string

func (c mapCache) GetCreatedDate(_ context.Context, listingURL string) (string, bool) {
	date, ok := c[listingURL]
	return date, ok
}

func (c mapCache) SetCreatedDate(_ context.Context, listingURL, date string) {
	c[listingURL] = date
}

var (
	params = listing.SearchParams{Brand: "BMW", Model: "X5"}
	carA   = item{id: 1, title: "BMW X5 2019", price: "40 000 лв.", km: "90 000 км"}
	carB   = item{id: 2, title: "BMW X5 2020", price: "50 000 лв.", km: "60 000 км"}
	carC   = item{id: 3, title: "BMW X5 2021", price: "60 000 лв.", km: "30 000 км"}
)

func urlsOf(records []listing.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ListingURL)
	}
	return out
}

func TestCrawlSkipsFailedMiddlePage(t *testing.T) {
	base := BuildSearchURL(params)
	f := &fakeFetcher{
		t: t,
		pages: map[string]string{
			base:             searchPage(3, carA),
			PageURL(base, 3): searchPage(3, carC, carA),
		},
		fails: map[string]error{PageURL(base, 2): errors.New("connection reset")},
	}

	result, err := NewCrawler(f, NewLocator(nullLogger(), ""), nullLogger()).Crawl(context.Background(), params, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.mobile.bg/obiava-1-listing",
		"https://www.mobile.bg/obiava-3-listing",
	}, urlsOf(result.Records))
	assert.Equal(t, 3, result.PagesPlanned)
	assert.Equal(t, 2, result.PagesFetched)
	assert.Equal(t, []int{2}, result.FailedPages)
	assert.Equal(t, base, result.SearchURL)
}

func TestCrawlFirstPageFailure(t *testing.T) {
	cause := errors.New("boom")
	f := &fakeFetcher{t: t, fails: map[string]error{BuildSearchURL(params): cause}}

	result, err := NewCrawler(f, NewLocator(nullLogger(), ""), nullLogger()).Crawl(context.Background(), params, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFirstPage)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, result.Records)
	assert.Len(t, f.calls, 1)
}

func TestCrawlPageCap(t *testing.T) {
	base := BuildSearchURL(params)
	f := &fakeFetcher{
		t: t,
		pages: map[string]string{
			base:             searchPage(5, carA),
			PageURL(base, 2): searchPage(5, carB),
		},
	}

	result, err := NewCrawler(f, NewLocator(nullLogger(), ""), nullLogger()).Crawl(context.Background(), params, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PagesPlanned)
	assert.Len(t, f.calls, 2)
	assert.Len(t, result.Records, 2)
}

func TestCrawlKilometerFilter(t *testing.T) {
	limited := params
	limited.KmMax = 70000
	base := BuildSearchURL(limited)
	f := &fakeFetcher{t: t, pages: map[string]string{base: searchPage(1, carA, carB)}}

	result, err := NewCrawler(f, NewLocator(nullLogger(), ""), nullLogger()).Crawl(context.Background(), limited, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.mobile.bg/obiava-2-listing"}, urlsOf(result.Records))
}

func TestCrawlEnrichesCreatedDate(t *testing.T) {
	base := BuildSearchURL(params)
	f := &fakeFetcher{t: t, pages: map[string]string{base: searchPage(1, carA, carB, carC)}}
	resolver := &fakeResolver{dates: map[string]string{
		"https://www.mobile.bg/obiava-1-listing": "2025-07-26 18:36:00",
	}}
	cache := mapCache{"https://www.mobile.bg/obiava-2-listing": "2025-01-02"}

	crawler := NewCrawler(f, NewLocator(nullLogger(), ""), nullLogger()).WithResolver(resolver, cache)
	result, err := crawler.Crawl(context.Background(), params, 1)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)

	assert.Equal(t, "2025-07-26 18:36:00", result.Records[0].CreatedDate)
	assert.Equal(t, "2025-01-02", result.Records[1].CreatedDate)
	assert.Empty(t, result.Records[2].CreatedDate)
	assert.Equal(t, 2, resolver.calls, "cached listing is not resolved again")
	assert.Equal(t, "2025-07-26 18:36:00", cache["https://www.mobile.bg/obiava-1-listing"])
}

func TestCrawlCancelledBetweenPages(t *testing.T) {
	base := BuildSearchURL(params)
	ctx, cancel := context.WithCancel(context.Background())
	f := &cancellingFetcher{fakeFetcher: fakeFetcher{t: t, pages: map[string]string{base: searchPage(3, carA)}}, cancel: cancel}

	result, err := NewCrawler(f, NewLocator(nullLogger(), ""), nullLogger()).Crawl(ctx, params, 0)
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
	assert.Len(t, f.calls, 1)
}

type cancellingFetcher struct {
	fakeFetcher
	cancel context.CancelFunc
}

func (f *cancellingFetcher) Fetch(ctx context.Context, rawURL string, params url.Values) (*goquery.Document, error) {
	defer f.cancel()
	return f.fakeFetcher.Fetch(ctx, rawURL, params)
}
