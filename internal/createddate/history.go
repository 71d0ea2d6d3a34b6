package createddate

import (
	"fmt"
	"regexp"
	"strconv"
)

// historyEntry is one "DD.MM в HH.MM" line of a price history widget.
type historyEntry struct {
	month, day, hour, minute int
}

func (e historyEntry) before(o historyEntry) bool {
	if e.month != o.month {
		return e.month < o.month
	}
	if e.day != o.day {
		return e.day < o.day
	}
	if e.hour != o.hour {
		return e.hour < o.hour
	}
	return e.minute < o.minute
}

var (
	entryPattern = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\s+(?:в|at)\s+(\d{1,2})[.:](\d{2})`)
	pageYear     = regexp.MustCompile(`(?is)(?:публикувана|редактирана|published|edited).{0,60}?((?:19|20)\d{2})`)
)

// earliestEntry picks the first entry in calendar order. Entries carry no
// year, so a history spanning new year sorts December last.
func earliestEntry(text string) (historyEntry, bool) {
	var earliest historyEntry
	found := false
	for _, m := range entryPattern.FindAllStringSubmatch(text, -1) {
		e := historyEntry{atoi(m[2]), atoi(m[1]), atoi(m[3]), atoi(m[4])}
		if !validEntry(e) {
			continue
		}
		if !found || e.before(earliest) {
			earliest = e
			found = true
		}
	}
	return earliest, found
}

func validEntry(e historyEntry) bool {
	return e.month >= 1 && e.month <= 12 &&
		e.day >= 1 && e.day <= 31 &&
		e.hour >= 0 && e.hour <= 23 &&
		e.minute >= 0 && e.minute <= 59
}

// recoverYear reads the year of the "Публикувана ... YYYY" line of the page,
// falling back to the resolution year.
func recoverYear(d *Detail) int {
	if m := pageYear.FindStringSubmatch(d.Text); m != nil {
		return atoi(m[1])
	}
	return d.Now.Year()
}

func fromHistory(text string, d *Detail) (string, bool) {
	e, ok := earliestEntry(text)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:00", recoverYear(d), e.month, e.day, e.hour, e.minute), true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
