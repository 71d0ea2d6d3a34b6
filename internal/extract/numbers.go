package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// number matches digit groups separated by spaces, "51 500" or "163 828".
const number = `(\d+(?:[\s\x{00A0}]*\d+)*)`

var (
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + number + `[\s\x{00A0}]*лв`),
		regexp.MustCompile(`(?i)` + number + `[\s\x{00A0}]*BGN`),
		regexp.MustCompile(`(?i)EUR[\s\x{00A0}]*` + number),
		regexp.MustCompile(`(?i)€[\s\x{00A0}]*` + number),
	}

	kilometerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\(` + number + `[\s\x{00A0}]*км\)`),
		regexp.MustCompile(`(?i)` + number + `[\s\x{00A0}]*км`),
		regexp.MustCompile(`(?i)` + number + `[\s\x{00A0}]*km`),
	}
)

// ExtractPrice returns the first price found by the ordered pattern list.
func ExtractPrice(text string) *int {
	return firstNumber(pricePatterns, text)
}

// ExtractKilometers returns the first distance found by the ordered pattern list.
func ExtractKilometers(text string) *int {
	return firstNumber(kilometerPatterns, text)
}

func firstNumber(patterns []*regexp.Regexp, text string) *int {
	for _, pattern := range patterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value, err := strconv.Atoi(Digits(match[1]))
		if err != nil {
			continue
		}
		return &value
	}
	return nil
}

// Digits drops every non-digit rune.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanText collapses whitespace, including NBSP, into single spaces.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
