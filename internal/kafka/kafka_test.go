package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardeals/internal/listing"
)

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

type recordingHandler struct {
	created  []SearchCreatedEvent
	requests []ScrapeRequestEvent
	listings []NewListingsEvent
}

func (h *recordingHandler) HandleSearchCreated(e SearchCreatedEvent) error {
	h.created = append(h.created, e)
	return nil
}

func (h *recordingHandler) HandleScrapeRequest(e ScrapeRequestEvent) error {
	h.requests = append(h.requests, e)
	return nil
}

func (h *recordingHandler) HandleNewListings(e NewListingsEvent) error {
	h.listings = append(h.listings, e)
	return nil
}

func TestProducerConsumerRoundTrip(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{writer: w, log: nullLogger()}
	ctx := context.Background()

	params := listing.SearchParams{Brand: "BMW", Model: "X5"}
	require.NoError(t, p.PublishSearchCreated(ctx, SearchCreatedEvent{SearchID: 7, Name: "BMW X5", Params: params, MaxPages: 3}))
	require.NoError(t, p.PublishScrapeRequest(ctx, 7))
	require.NoError(t, p.PublishNewListings(ctx, NewListingsEvent{
		SearchID: 7,
		ChatID:   42,
		Listings: []listing.Record{{Brand: "BMW", Model: "X5", Price: listing.IntPtr(50000), ListingURL: "https://www.mobile.bg/obiava-1"}},
	}))
	require.Len(t, w.messages, 3)
	assert.Equal(t, "search_7", string(w.messages[0].Key))
	assert.Equal(t, "listings_search_7", string(w.messages[2].Key))

	h := &recordingHandler{}
	c := &Consumer{log: nullLogger()}
	for _, m := range w.messages {
		require.NoError(t, c.handleMessage(m, h))
	}

	require.Len(t, h.created, 1)
	assert.Equal(t, EventSearchCreated, h.created[0].EventType)
	assert.Equal(t, params, h.created[0].Params)

	require.Len(t, h.requests, 1)
	assert.Equal(t, uint(7), h.requests[0].SearchID)

	require.Len(t, h.listings, 1)
	assert.Equal(t, int64(42), h.listings[0].ChatID)
	require.Len(t, h.listings[0].Listings, 1)
	assert.Equal(t, 50000, *h.listings[0].Listings[0].Price)
	assert.False(t, h.listings[0].FoundAt.IsZero())
}

func TestHandleMessageIgnoresUnknownEvents(t *testing.T) {
	h := &recordingHandler{}
	c := &Consumer{log: nullLogger()}

	require.NoError(t, c.handleMessage(kafka.Message{Value: []byte(`{"event_type":"filter_created"}`)}, h))
	require.NoError(t, c.handleMessage(kafka.Message{Value: []byte(`{"hello":"world"}`)}, h))
	assert.Error(t, c.handleMessage(kafka.Message{Value: []byte(`not json`)}, h))

	assert.Empty(t, h.created)
	assert.Empty(t, h.requests)
	assert.Empty(t, h.listings)
}

func TestPublishWrapsWriteErrors(t *testing.T) {
	p := &Producer{writer: &recordingWriter{err: errors.New("broker down")}, log: nullLogger()}

	err := p.PublishScrapeRequest(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scrape_request")
}

func TestIgnoreEvents(t *testing.T) {
	var h EventHandler = struct{ IgnoreEvents }{}
	data, _ := json.Marshal(NewListingsEvent{EventType: EventNewListings})
	assert.NoError(t, (&Consumer{log: nullLogger()}).handleMessage(kafka.Message{Value: data}, h))
}
