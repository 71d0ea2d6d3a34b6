package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Attempts       int
	BackoffBase    time.Duration
	BackoffStep    time.Duration
	JitterMin      time.Duration
	JitterMax      time.Duration
	RequestTimeout time.Duration
	// DebugFile receives the last fetched body. Empty disables it.
	DebugFile string
}

func DefaultOptions() Options {
	return Options{
		Attempts:       3,
		BackoffBase:    2 * time.Second,
		BackoffStep:    2 * time.Second,
		JitterMin:      1 * time.Second,
		JitterMax:      3 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}

// Fetcher issues page GETs with retry, backoff and a human-like pause after
// every successful response.
type Fetcher struct {
	collector *colly.Collector
	opts      Options
	log       logrus.FieldLogger

	// Sleep waits for d or until ctx is done. Replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	rand  *rand.Rand
}

func New(opts Options, log logrus.FieldLogger) *Fetcher {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	c := colly.NewCollector(
		colly.UserAgent(UserAgent),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
	)
	if opts.RequestTimeout > 0 {
		c.SetRequestTimeout(opts.RequestTimeout)
	}

	return &Fetcher{
		collector: c,
		opts:      opts,
		log:       log.WithField("component", "fetcher"),
		Sleep:     sleepContext,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (f *Fetcher) Options() Options {
	return f.opts
}

// Fetch returns the parsed page or the last error seen. It never returns an
// empty document on failure.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, params url.Values) (*goquery.Document, error) {
	target, err := withParams(rawURL, params)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < f.opts.Attempts; attempt++ {
		if attempt > 0 {
			delay := f.opts.BackoffBase + time.Duration(attempt)*f.opts.BackoffStep
			f.log.Debugf("Waiting %v before retry %d of %s", delay, attempt, target)
			if err := f.Sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		f.log.Debugf("Fetching: %s (attempt %d)", target, attempt+1)
		body, err := f.get(ctx, target)
		if err == nil {
			if err := f.Sleep(ctx, f.jitter()); err != nil {
				return nil, err
			}
			f.saveDebug(body)

			doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", target, err)
			}
			doc.Url, _ = url.Parse(target)
			return doc, nil
		}
		lastErr = err

		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			if !httpErr.Blocked() {
				f.log.Errorf("HTTP error fetching %s: %v", target, err)
				return nil, err
			}
			f.log.Warnf("%d on attempt %d for %s", httpErr.StatusCode, attempt+1, target)
			if attempt == f.opts.Attempts-1 {
				return nil, &blockedError{cause: httpErr}
			}
			continue
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.log.Warnf("Error fetching %s: %v", target, err)
	}

	return nil, lastErr
}

func (f *Fetcher) get(ctx context.Context, target string) ([]byte, error) {
	c := f.collector.Clone()
	c.Context = ctx

	var (
		body   []byte
		status int
	)

	c.OnRequest(func(r *colly.Request) {
		for k, v := range BrowserHeaders {
			r.Headers.Set(k, v)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	err := c.Visit(target)
	if status != 0 && (status < 200 || status > 299) {
		return nil, &HTTPError{URL: target, StatusCode: status}
	}
	if err != nil {
		return nil, &NetworkError{URL: target, Err: err}
	}
	return body, nil
}

func (f *Fetcher) jitter() time.Duration {
	span := f.opts.JitterMax - f.opts.JitterMin
	if span <= 0 {
		return f.opts.JitterMin
	}
	return f.opts.JitterMin + time.Duration(f.rand.Int63n(int64(span)))
}

func (f *Fetcher) saveDebug(body []byte) {
	if f.opts.DebugFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(f.opts.DebugFile), 0o755); err != nil {
		f.log.Warnf("Could not create debug directory: %v", err)
		return
	}
	if err := os.WriteFile(f.opts.DebugFile, body, 0o644); err != nil {
		f.log.Warnf("Could not save %s: %v", f.opts.DebugFile, err)
	}
}

func withParams(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	query := u.Query()
	for k, values := range params {
		for _, v := range values {
			query.Add(k, v)
		}
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
