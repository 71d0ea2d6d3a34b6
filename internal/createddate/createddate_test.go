package createddate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resolutionTime = time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func detail(t *testing.T, listingURL, body string) *Detail {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return NewDetail(listingURL, doc, resolutionTime)
}

func TestResolveEmptyDetailIsAbsent(t *testing.T) {
	r := New(nil, &fakeHistory{}, nullLogger())

	date, ok := r.ResolveDetail(context.Background(), &Detail{Now: resolutionTime})
	assert.False(t, ok)
	assert.Empty(t, date)

	date, ok = r.ResolveDetail(context.Background(), detail(t, "https://www.mobile.bg/obiava-1", "<html><body>nothing</body></html>"))
	assert.False(t, ok)
	assert.Empty(t, date)
}

func TestEarliestEntry(t *testing.T) {
	e, ok := earliestEntry("26.07 в 18.36 51 500 лв. 02.03 в 09.15 53 000 лв. 02.03 at 08:59 54 000 лв. 45.13 в 10.10")
	require.True(t, ok)
	assert.Equal(t, historyEntry{month: 3, day: 2, hour: 8, minute: 59}, e)

	_, ok = earliestEntry("no entries here")
	assert.False(t, ok)
}

func TestStaticHistoryTier(t *testing.T) {
	body := `<html><body>
<div class="priceHistory"><p>15.05 в 10.20 - 40 000 лв.</p><p>01.04 в 07.05 - 42 000 лв.</p></div>
<div>Редактирана в 11:00 часа на 20.05.2024 год.</div>
</body></html>`

	date, ok := StaticHistoryTier{}.Resolve(context.Background(), detail(t, "", body))
	require.True(t, ok)
	assert.Equal(t, "2024-04-01 07:05:00", date)
}

func TestStaticHistoryTierFallsBackToCurrentYear(t *testing.T) {
	body := `<html><body><div id="priceHistory">03.02 в 14.30</div></body></html>`

	date, ok := StaticHistoryTier{}.Resolve(context.Background(), detail(t, "", body))
	require.True(t, ok)
	assert.Equal(t, "2025-02-03 14:30:00", date)
}

func TestPlainTextTier(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"published wins over edited", "Редактирана в 09:10 часа на 02.02.2024 Публикувана в 18:36 часа на 26.07.2023", "2023-07-26 18:36:00", true},
		{"edited", "Редактирана в 09:10 часа на 02.02.2024", "2024-02-02 09:10:00", true},
		{"english", "Published at 7:05 on 01.03.2022", "2022-03-01 07:05:00", true},
		{"bare time and date", "обновена 21:15 часа на 30.12.2024", "2024-12-30 21:15:00", true},
		{"bare date", "добавена на 05.06.2021", "2021-06-05", true},
		{"invalid date skipped", "31.02.2024 и после 01.03.2024", "2024-03-01", true},
		{"nothing", "без дата", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			date, ok := PlainTextTier{}.Resolve(context.Background(), &Detail{Text: tc.text})
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, date)
		})
	}
}

func TestListingID(t *testing.T) {
	assert.Equal(t, "123", listingID(&Detail{URL: "https://www.mobile.bg/pcgi/mobile.cgi?act=4&adv=123"}))
	assert.Equal(t, "11111", listingID(&Detail{URL: "https://www.mobile.bg/obiava-11111-bmw-x5"}))
	assert.Equal(t, "777", listingID(&Detail{URL: "https://m.example/x", HTML: `<div data-adv-id="777"></div>`}))
	assert.Equal(t, "888", listingID(&Detail{URL: "https://m.example/x", HTML: `var cfg = {"advId": "888"}`}))
	assert.Empty(t, listingID(&Detail{URL: "https://m.example/x"}))
}

const detailPage = `<html><body>
<div class="price">51 500 лв.</div>
<div>Публикувана в 10:00 часа на 05.01.2024</div>
</body></html>`

func TestDynamicTierQueriesHistory(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"html":    "<table><tr><td>12.03 в 16.45</td></tr><tr><td>05.01 в 09.30</td></tr></table>",
		})
	}))
	defer srv.Close()

	tier := DynamicTier{History: NewHistoryClient(srv.URL, time.Second, nullLogger()), Log: nullLogger()}
	date, ok := tier.Resolve(context.Background(), detail(t, "https://www.mobile.bg/obiava-11111-bmw-x5", detailPage))
	require.True(t, ok)
	assert.Equal(t, "2024-01-05 09:30:00", date)

	assert.Equal(t, "11111", form.Get("adv"))
	assert.Equal(t, "51500", form.Get("price"))
	assert.Equal(t, "лв.", form.Get("currency"))
	assert.Equal(t, "history", form.Get("act"))
}

func TestDynamicTierFailuresAreAbsent(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"unsuccessful": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"success": false, "html": ""}`))
		},
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"not json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		},
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			tier := DynamicTier{History: NewHistoryClient(srv.URL, time.Second, nullLogger()), Log: nullLogger()}
			_, ok := tier.Resolve(context.Background(), detail(t, "https://www.mobile.bg/obiava-11111-bmw-x5", detailPage))
			assert.False(t, ok)
		})
	}
}

type fakeHistory struct {
	fragment string
	err      error
	calls    int
}

func (f *fakeHistory) History(context.Context, string, string, string) (string, error) {
	f.calls++
	return f.fragment, f.err
}

type fakeFetcher struct {
	body string
	err  error
}

func (f fakeFetcher) Fetch(context.Context, string, url.Values) (*goquery.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(f.body))
}

func TestResolverTierOrder(t *testing.T) {
	history := &fakeHistory{fragment: "<p>07.01 в 08.00</p>"}
	r := New(fakeFetcher{body: detailPage}, history, nullLogger())
	r.Now = func() time.Time { return resolutionTime }

	date, ok := r.Resolve(context.Background(), "https://www.mobile.bg/obiava-42-audi")
	require.True(t, ok)
	assert.Equal(t, "2024-01-07 08:00:00", date, "dynamic tier runs first")
	assert.Equal(t, 1, history.calls)
}

func TestResolverFallsThroughToPlainText(t *testing.T) {
	history := &fakeHistory{err: errors.New("timeout")}
	r := New(fakeFetcher{body: detailPage}, history, nullLogger())

	date, ok := r.Resolve(context.Background(), "https://www.mobile.bg/obiava-42-audi")
	require.True(t, ok)
	assert.Equal(t, "2024-01-05 10:00:00", date)
}

func TestResolverFetchFailureIsAbsent(t *testing.T) {
	r := New(fakeFetcher{err: errors.New("blocked")}, nil, nullLogger())

	_, ok := r.Resolve(context.Background(), "https://www.mobile.bg/obiava-42-audi")
	assert.False(t, ok)
}
