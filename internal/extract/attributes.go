package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Attributes are the structured values read from the short parameter tokens
// of a listing block.
type Attributes struct {
	Year               *int
	Kilometers         *int
	Color              string
	EngineType         string
	EnginePower        string
	EngineDisplacement string
	GearboxType        string
	Doors              *int
	Seats              *int
}

// attributeMatcher sets one field from a token. It reports false when the
// field is already set or the token does not fit.
type attributeMatcher func(a *Attributes, token string) bool

var standaloneYear = regexp.MustCompile(`(?:^|\D)((?:19[89]\d|20[0-3]\d))(?:\D|$)`)

var attributeMatchers = []attributeMatcher{
	matchYear,
	matchKilometers,
	matchVocabulary(Colors, func(a *Attributes) *string { return &a.Color }),
	matchVocabulary(FuelTypes, func(a *Attributes) *string { return &a.EngineType }),
	matchUnitString(powerUnit, func(a *Attributes) *string { return &a.EnginePower }),
	matchUnitString(displacementUnit, func(a *Attributes) *string { return &a.EngineDisplacement }),
	matchVocabulary(GearboxTypes, func(a *Attributes) *string { return &a.GearboxType }),
	matchUnitInt(doorsUnit, func(a *Attributes) **int { return &a.Doors }),
	matchUnitInt(seatsUnit, func(a *Attributes) **int { return &a.Seats }),
}

// ParseAttributes runs every matcher over every token in order. A field keeps
// the value of the first token that matched it.
func ParseAttributes(tokens []string) Attributes {
	var a Attributes
	for _, raw := range tokens {
		token := CleanText(raw)
		if token == "" {
			continue
		}
		for _, match := range attributeMatchers {
			match(&a, token)
		}
	}
	return a
}

func matchYear(a *Attributes, token string) bool {
	if a.Year != nil || hasUnit(token) {
		return false
	}
	m := standaloneYear.FindStringSubmatch(token)
	if m == nil {
		return false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	a.Year = &year
	return true
}

func matchKilometers(a *Attributes, token string) bool {
	if a.Kilometers != nil || !strings.Contains(strings.ToLower(token), distanceUnit) {
		return false
	}
	if km := ExtractKilometers(token); km != nil {
		a.Kilometers = km
		return true
	}
	km, err := strconv.Atoi(Digits(token))
	if err != nil {
		return false
	}
	a.Kilometers = &km
	return true
}

func matchVocabulary(words []string, field func(*Attributes) *string) attributeMatcher {
	return func(a *Attributes, token string) bool {
		target := field(a)
		if *target != "" {
			return false
		}
		lower := strings.ToLower(token)
		for _, w := range words {
			if lower == w {
				*target = token
				return true
			}
		}
		return false
	}
}

func matchUnitString(unit string, field func(*Attributes) *string) attributeMatcher {
	return func(a *Attributes, token string) bool {
		target := field(a)
		if *target != "" || !strings.Contains(strings.ToLower(token), unit) {
			return false
		}
		digits := Digits(token)
		if digits == "" {
			return false
		}
		*target = digits
		return true
	}
}

func matchUnitInt(unit string, field func(*Attributes) **int) attributeMatcher {
	return func(a *Attributes, token string) bool {
		target := field(a)
		if *target != nil || !strings.Contains(strings.ToLower(token), unit) {
			return false
		}
		value, err := strconv.Atoi(Digits(token))
		if err != nil {
			return false
		}
		*target = &value
		return true
	}
}

func hasUnit(token string) bool {
	lower := strings.ToLower(token)
	for _, unit := range unitMarkers {
		if strings.Contains(lower, unit) {
			return true
		}
	}
	return false
}

// CountIndicators returns how many distinct indicator words occur in text.
func CountIndicators(text string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, indicator := range ListingIndicators {
		if strings.Contains(lower, indicator) {
			count++
		}
	}
	return count
}
