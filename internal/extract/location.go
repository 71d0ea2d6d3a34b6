package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	regionRun = regexp.MustCompile(`^[^0-9:]+`)
	clockTime = regexp.MustCompile(`\d{1,2}:\d{2}`)
)

// ExtractLocation pulls the seller location out of strings such as
// "обл. Бургас 18:36 часа на 26.07". It returns "" when text is blank.
func ExtractLocation(text string) string {
	if idx := strings.Index(text, RegionMarker); idx >= 0 {
		rest := strings.TrimSpace(text[idx+len(RegionMarker):])
		if region := strings.TrimSpace(regionRun.FindString(rest)); region != "" {
			return RegionMarker + " " + region
		}
	}

	lower := strings.ToLower(text)
	for _, city := range Cities {
		if strings.Contains(lower, city) {
			return titleCase(city)
		}
	}

	if loc := clockTime.FindStringIndex(text); loc != nil {
		if prefix := strings.TrimSpace(text[:loc[0]]); prefix != "" {
			return prefix
		}
	}

	return strings.TrimSpace(text)
}

// titleCase upper-cases every letter that follows a non-letter.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
