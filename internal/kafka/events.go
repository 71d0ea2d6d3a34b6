package kafka

import (
	"time"

	"cardeals/internal/listing"
)

const DefaultTopic = "cardeals-events"

const (
	EventSearchCreated = "search_created"
	EventScrapeRequest = "scrape_request"
	EventNewListings   = "new_listings"
)

type SearchCreatedEvent struct {
	EventType string               `json:"event_type"`
	ChatID    int64                `json:"chat_id,omitempty"`
	SearchID  uint                 `json:"search_id"`
	Name      string               `json:"name"`
	Params    listing.SearchParams `json:"params"`
	MaxPages  int                  `json:"max_pages"`
	CreatedAt time.Time            `json:"created_at"`
}

// ScrapeRequestEvent asks the scrape service for an immediate run. SearchID
// zero means every active search.
type ScrapeRequestEvent struct {
	EventType string    `json:"event_type"`
	SearchID  uint      `json:"search_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type NewListingsEvent struct {
	EventType  string           `json:"event_type"`
	SearchID   uint             `json:"search_id"`
	ChatID     int64            `json:"chat_id,omitempty"`
	SearchName string           `json:"search_name"`
	SearchURL  string           `json:"search_url"`
	Listings   []listing.Record `json:"listings"`
	FoundAt    time.Time        `json:"found_at"`
}
