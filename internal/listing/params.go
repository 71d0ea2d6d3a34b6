package listing

import "fmt"

var (
	EngineTypes  = []string{"petrol", "diesel", "hybrid", "electric"}
	GearboxTypes = []string{"manual", "automatic"}
)

// SearchParams is a sparse set of filters. Zero values impose no filter.
type SearchParams struct {
	Brand       string `json:"brand,omitempty"`
	Model       string `json:"model,omitempty"`
	YearStart   int    `json:"year_start,omitempty"`
	PriceMax    int    `json:"price_max,omitempty"`
	KmMax       int    `json:"km_max,omitempty"`
	EngineType  string `json:"engine_type,omitempty"`
	GearboxType string `json:"gearbox_type,omitempty"`
}

func (p SearchParams) Validate() error {
	if p.EngineType != "" && !contains(EngineTypes, p.EngineType) {
		return fmt.Errorf("unsupported engine type %q", p.EngineType)
	}
	if p.GearboxType != "" && !contains(GearboxTypes, p.GearboxType) {
		return fmt.Errorf("unsupported gearbox type %q", p.GearboxType)
	}
	if p.YearStart < 0 || p.PriceMax < 0 || p.KmMax < 0 {
		return fmt.Errorf("numeric filters must not be negative")
	}
	return nil
}

// Matches applies the filters the search URL cannot express.
// Records with unknown kilometers pass.
func (p SearchParams) Matches(r Record) bool {
	if p.KmMax > 0 && r.Kilometers != nil && *r.Kilometers > p.KmMax {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
