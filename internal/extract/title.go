package extract

import (
	"regexp"
	"strconv"
	"strings"
)

const UnknownModel = "Unknown"

var (
	// A year may be glued to neighbouring text by a separator but never by a
	// letter or digit, so "4MATIC-2021" has a year and "1998cc" does not.
	titleYear    = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])((?:19[89]\d|20[0-3]\d))(?:[^\p{L}\p{N}]|$)`)
	separatorRun = regexp.MustCompile(`[-/_.,()]{2,}`)
)

const separators = "-/_.,() "

// ParseTitle splits "Brand Model ... Year" into its parts. The model is
// UnknownModel when nothing but the brand and year is left.
func ParseTitle(title string) (brand, model string, year *int) {
	tokens := strings.Fields(title)
	if len(tokens) == 0 {
		return UnknownModel, UnknownModel, nil
	}
	brand = tokens[0]

	modelTokens := make([]string, 0, len(tokens)-1)
	for _, token := range tokens[1:] {
		if year == nil {
			if loc := titleYear.FindStringSubmatchIndex(token); loc != nil {
				value, err := strconv.Atoi(token[loc[2]:loc[3]])
				if err == nil {
					year = &value
					token = collapseSeparators(token[:loc[2]] + token[loc[3]:])
				}
			}
		}
		if token != "" {
			modelTokens = append(modelTokens, token)
		}
	}

	model = strings.Join(modelTokens, " ")
	if model == "" {
		model = UnknownModel
	}
	return brand, model, year
}

func collapseSeparators(s string) string {
	s = separatorRun.ReplaceAllStringFunc(s, func(run string) string {
		return run[:1]
	})
	return strings.Trim(s, separators)
}
