package createddate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"cardeals/internal/fetcher"
)

const DefaultHistoryEndpoint = "https://www.mobile.bg/pcgi/mobile.cgi"

var errNoHistory = errors.New("price history unavailable")

type historyResponse struct {
	Success bool   `json:"success"`
	HTML    string `json:"html"`
}

// HistoryClient queries the price history widget endpoint.
type HistoryClient struct {
	client   *resty.Client
	endpoint string
	log      logrus.FieldLogger
}

func NewHistoryClient(endpoint string, timeout time.Duration, log logrus.FieldLogger) *HistoryClient {
	if endpoint == "" {
		endpoint = DefaultHistoryEndpoint
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", fetcher.UserAgent).
		SetHeader("Accept", "application/json, text/javascript, */*; q=0.01").
		SetHeader("Accept-Language", fetcher.BrowserHeaders["Accept-Language"]).
		SetHeader("X-Requested-With", "XMLHttpRequest")

	return &HistoryClient{
		client:   client,
		endpoint: endpoint,
		log:      log.WithField("component", "price_history"),
	}
}

// History returns the rendered history fragment for a listing.
func (c *HistoryClient) History(ctx context.Context, referer, advID, price string) (string, error) {
	var body historyResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Referer", referer).
		SetFormData(map[string]string{
			"adv":      advID,
			"price":    price,
			"currency": "лв.",
			"act":      "history",
		}).
		SetResult(&body).
		ForceContentType("application/json").
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("price history request for %s: %w", advID, err)
	}
	if resp.IsError() {
		return "", &fetcher.HTTPError{URL: c.endpoint, StatusCode: resp.StatusCode()}
	}
	if !body.Success || body.HTML == "" {
		return "", errNoHistory
	}
	return body.HTML, nil
}
