package listing

// Dedupe keeps the first record for every listing URL, preserving order.
// Records without a URL have no identity and are all kept.
func Dedupe(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	unique := make([]Record, 0, len(records))

	for _, r := range records {
		if r.ListingURL != "" {
			if seen[r.ListingURL] {
				continue
			}
			seen[r.ListingURL] = true
		}
		unique = append(unique, r)
	}

	return unique
}

// URLs returns the set of listing URLs present in records.
func URLs(records []Record) map[string]bool {
	urls := make(map[string]bool, len(records))
	for _, r := range records {
		if r.ListingURL != "" {
			urls[r.ListingURL] = true
		}
	}
	return urls
}
