package scraper

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"cardeals/internal/listing"
)

const (
	BaseURL = "https://mobile.bg"

	// EURToBGN is the fixed rate used for the price1 filter.
	EURToBGN = 2.0

	regionSegment = "namira-se-v-balgariya"
)

var categoryPrefix = []string{"obiavi", "avtomobili-dzhipove"}

// Slug tables. They cover one manufacturer family and grow deliberately.
var (
	BrandAliases = map[string]string{
		"mercedes": "mercedes-benz",
		"vw":       "volkswagen",
		"bmw":      "bmw",
		"audi":     "audi",
	}

	ModelAliases = map[string]string{
		"glc":       "glc-klasa",
		"glc-class": "glc-klasa",
		"c-class":   "c-klasa",
		"e-class":   "e-klasa",
		"s-class":   "s-klasa",
		"a-class":   "a-klasa",
		"b-class":   "b-klasa",
	}

	EngineSegments = map[string]string{
		"diesel":   "dizelov",
		"petrol":   "benzinovs",
		"electric": "elektricheski",
		"hybrid":   "hibridni",
	}

	GearboxSegments = map[string]string{
		"automatic": "avtomatichna",
		"manual":    "rychna",
	}
)

// BuildSearchURL maps params onto the site's path-based search URL. It is
// pure: equal params give equal strings.
func BuildSearchURL(params listing.SearchParams) string {
	parts := append([]string(nil), categoryPrefix...)

	if slug := aliasSlug(params.Brand, BrandAliases); slug != "" {
		parts = append(parts, slug)
	}
	if slug := aliasSlug(params.Model, ModelAliases); slug != "" {
		parts = append(parts, slug)
	}
	if segment, ok := EngineSegments[params.EngineType]; ok {
		parts = append(parts, segment)
	}
	if segment, ok := GearboxSegments[params.GearboxType]; ok {
		parts = append(parts, segment)
	}
	if params.YearStart > 0 {
		parts = append(parts, fmt.Sprintf("ot-%d", params.YearStart))
	}
	parts = append(parts, regionSegment)

	link := BaseURL + "/" + strings.Join(parts, "/")

	if params.PriceMax > 0 {
		query := url.Values{}
		query.Set("price1", strconv.Itoa(int(float64(params.PriceMax)*EURToBGN)))
		link += "?" + query.Encode()
	}

	return link
}

// PageURL inserts /p-N before the query string. Page 1 is the base itself.
func PageURL(base string, page int) string {
	if page <= 1 {
		return base
	}
	path, query, hasQuery := strings.Cut(base, "?")
	path = strings.TrimSuffix(path, "/")
	if hasQuery {
		return fmt.Sprintf("%s/p-%d?%s", path, page, query)
	}
	return fmt.Sprintf("%s/p-%d", path, page)
}

func aliasSlug(value string, aliases map[string]string) string {
	slug := slugify(value)
	if alias, ok := aliases[slug]; ok {
		return alias
	}
	return slug
}

func slugify(value string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "-")
}
