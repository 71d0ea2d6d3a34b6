package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cardeals/internal/database"
	"cardeals/internal/listing"
	"cardeals/internal/utils"
)

// Document is the JSON results document printed by the command and served
// by the read-side server.
type Document struct {
	SearchParams listing.SearchParams `json:"search_params"`
	SearchURL    *string              `json:"search_url"`
	TotalResults int                  `json:"total_results"`
	Timestamp    string               `json:"timestamp"`
	Cars         []any                `json:"cars"`
}

func FromRecords(params listing.SearchParams, searchURL string, records []listing.Record, now time.Time) Document {
	cars := make([]any, 0, len(records))
	for _, r := range records {
		if r.ImageURLs == nil {
			r.ImageURLs = []string{}
		}
		cars = append(cars, r)
	}

	doc := Document{
		SearchParams: params,
		TotalResults: len(cars),
		Timestamp:    utils.FormatTimestamp(now),
		Cars:         cars,
	}
	if searchURL != "" {
		doc.SearchURL = &searchURL
	}
	return doc
}

// FromCars renders stored rows with their lifecycle fields merged into each
// record. A payload that does not decode yields a car with lifecycle fields
// only.
func FromCars(cars []database.Car, now time.Time) Document {
	out := make([]any, 0, len(cars))
	for _, car := range cars {
		fields := map[string]any{}
		if err := json.Unmarshal([]byte(car.Data), &fields); err != nil || fields == nil {
			fields = map[string]any{}
		}
		fields["status"] = car.Status
		fields["last_seen"] = utils.FormatTimestamp(car.LastSeen)
		fields["removed_date"] = utils.FormatOptional(car.RemovedDate)
		fields["created_date"] = car.CreatedDate
		out = append(out, fields)
	}

	doc := Document{
		TotalResults: len(out),
		Cars:         out,
	}
	if !now.IsZero() {
		doc.Timestamp = utils.FormatTimestamp(now)
	}
	return doc
}

// Write emits the document indented, with non-ASCII text left as is.
func (d Document) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("write results document: %w", err)
	}
	return nil
}
