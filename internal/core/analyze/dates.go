package analyze

import (
	"regexp"
	"sort"
	"strconv"
	"time"
)

var (
	isoDatePattern = regexp.MustCompile(
		`\b(20\d{2}|19\d{2})[-/](0[1-9]|1[0-2])[-/](0[1-9]|[12]\d|3[01])\b`)
	slashDatePattern = regexp.MustCompile(
		`\b(0[1-9]|[12]\d|3[01])/(0[1-9]|1[0-2])/(20\d{2}|19\d{2})\b`)
	monthNamePattern = regexp.MustCompile(
		`(?i)\b(0?[1-9]|[12]\d|3[01])\s+(janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre)\s+(20\d{2}|19\d{2})\b`)
)

var monthNames = map[string]time.Month{
	"janvier":   time.January,
	"fevrier":   time.February,
	"mars":      time.March,
	"avril":     time.April,
	"mai":       time.May,
	"juin":      time.June,
	"juillet":   time.July,
	"aout":      time.August,
	"septembre": time.September,
	"octobre":   time.October,
	"novembre":  time.November,
	"decembre":  time.December,
}

// Dates recognizes ISO (YYYY-MM-DD, dash or slash), day/month/year with
// slashes, and day + French month-name + year forms. Every candidate is
// validated by actual calendar construction, so day 31 of a 30-day month is
// silently discarded. Output is the sorted, deduplicated list of ISO dates.
func Dates(question string) []string {
	found := make(map[string]struct{})

	for _, m := range isoDatePattern.FindAllStringSubmatch(question, -1) {
		addValidDate(found, m[1], m[2], m[3])
	}
	for _, m := range slashDatePattern.FindAllStringSubmatch(question, -1) {
		addValidDate(found, m[3], m[2], m[1])
	}
	for _, m := range monthNamePattern.FindAllStringSubmatch(question, -1) {
		month, ok := monthNames[Normalize(m[2])]
		if !ok {
			continue
		}
		addValidDate(found, m[3], strconv.Itoa(int(month)), m[1])
	}

	dates := make([]string, 0, len(found))
	for d := range found {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func addValidDate(set map[string]struct{}, year, month, day string) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return
	}

	// time.Date normalizes overflow (Feb 30 becomes Mar 2), so an exact
	// component round-trip is the validity check.
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return
	}
	set[t.Format("2006-01-02")] = struct{}{}
}
