package bot

import (
	"fmt"
	"strconv"
	"strings"

	"cardeals/internal/database"
	"cardeals/internal/listing"
)

const previewLimit = 5

// FormatListings renders the first few listings of a result set.
func FormatListings(name string, records []listing.Record) string {
	if len(records) == 0 {
		return "😔 No listings found"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 %s - found %d:\n\n", name, len(records))

	for i, r := range records {
		if i >= previewLimit {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title())
		if r.Price != nil {
			fmt.Fprintf(&b, "💰 %d %s\n", *r.Price, r.Currency)
		}
		if r.Kilometers != nil {
			fmt.Fprintf(&b, "🛣 %d km\n", *r.Kilometers)
		}
		if r.Location != "" {
			fmt.Fprintf(&b, "📍 %s\n", r.Location)
		}
		if r.ListingURL != "" {
			fmt.Fprintf(&b, "🔗 %s\n", r.ListingURL)
		}
		b.WriteString("\n")
	}

	if len(records) > previewLimit {
		fmt.Fprintf(&b, "... and %d more listings\n", len(records)-previewLimit)
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatSearches(searches []*database.SavedSearch) string {
	if len(searches) == 0 {
		return "📝 You have no saved searches yet. Add one with /add <brand> [model] [max price EUR]"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Your searches (%d):\n\n", len(searches))
	for i, s := range searches {
		status := "🟢"
		if !s.IsActive {
			status = "🔴"
		}
		fmt.Fprintf(&b, "%s %d. %s\n", status, i+1, s.Name)
		if s.PriceMax > 0 {
			fmt.Fprintf(&b, "   💰 up to %d EUR\n", s.PriceMax)
		}
		if s.YearStart > 0 {
			fmt.Fprintf(&b, "   📅 from %d\n", s.YearStart)
		}
		if s.KmMax > 0 {
			fmt.Fprintf(&b, "   🛣 up to %d km\n", s.KmMax)
		}
	}
	b.WriteString("\n🟢 active | 🔴 paused")
	return b.String()
}

// ParseAddArgs reads "/add <brand> [model] [max price EUR]". A trailing
// number is the price cap.
func ParseAddArgs(args []string) (listing.SearchParams, error) {
	if len(args) == 0 {
		return listing.SearchParams{}, fmt.Errorf("brand is required")
	}

	params := listing.SearchParams{Brand: args[0]}
	rest := args[1:]
	if n := len(rest); n > 0 {
		if price, err := strconv.Atoi(rest[n-1]); err == nil {
			if price < 0 {
				return listing.SearchParams{}, fmt.Errorf("price must not be negative")
			}
			params.PriceMax = price
			rest = rest[:n-1]
		}
	}
	params.Model = strings.Join(rest, " ")
	return params, params.Validate()
}

// pick resolves a 1-based position from a command argument.
func pick(args []string, searches []*database.SavedSearch) (*database.SavedSearch, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("give the search number, for example 1")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(searches) {
		return nil, fmt.Errorf("invalid search number, use 1 to %d", len(searches))
	}
	return searches[n-1], nil
}
