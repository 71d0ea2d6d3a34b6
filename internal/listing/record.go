package listing

import (
	"encoding/json"
	"fmt"
)

const (
	UnknownModel = "Unknown"
	SourceSite   = "mobile.bg"
	CurrencyBGN  = "BGN"
)

// Record is one vehicle advertisement snapshot.
type Record struct {
	Brand              string   `json:"brand"`
	Model              string   `json:"model"`
	Year               *int     `json:"year"`
	Price              *int     `json:"price"`
	Currency           string   `json:"currency"`
	Kilometers         *int     `json:"kilometers"`
	EngineType         string   `json:"engine_type,omitempty"`
	EngineDisplacement string   `json:"engine_displacement,omitempty"`
	EnginePower        string   `json:"engine_power,omitempty"`
	GearboxType        string   `json:"gearbox_type,omitempty"`
	Color              string   `json:"color,omitempty"`
	Doors              *int     `json:"doors,omitempty"`
	Seats              *int     `json:"seats,omitempty"`
	Location           string   `json:"location,omitempty"`
	DealerName         string   `json:"dealer_name,omitempty"`
	SourceSite         string   `json:"source_site"`
	ListingURL         string   `json:"listing_url,omitempty"`
	ImageURLs          []string `json:"image_urls"`
	Description        string   `json:"description,omitempty"`
	CreatedDate        string   `json:"created_date,omitempty"`
}

// Emittable reports whether the record carries enough data to be kept.
func (r Record) Emittable() bool {
	return r.Price != nil && r.Brand != "" && r.Brand != UnknownModel
}

// WithCreatedDate returns the enriched copy of r. The receiver is not modified.
func (r Record) WithCreatedDate(date string) Record {
	enriched := r
	if r.ImageURLs != nil {
		enriched.ImageURLs = append([]string(nil), r.ImageURLs...)
	}
	enriched.CreatedDate = date
	return enriched
}

// Title renders brand, model and year the way the site prints them.
func (r Record) Title() string {
	if r.Year != nil {
		return fmt.Sprintf("%s %s %d", r.Brand, r.Model, *r.Year)
	}
	return fmt.Sprintf("%s %s", r.Brand, r.Model)
}

// Payload is the serialized form kept by the store.
func (r Record) Payload() ([]byte, error) {
	if r.ImageURLs == nil {
		r.ImageURLs = []string{}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listing %q: %w", r.ListingURL, err)
	}
	return data, nil
}

func DecodePayload(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal listing payload: %w", err)
	}
	return r, nil
}

// IntPtr is a helper for optional integer fields.
func IntPtr(v int) *int {
	return &v
}
