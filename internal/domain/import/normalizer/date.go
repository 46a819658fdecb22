// Package normalizer turns free-form text fragments into canonical values: dates, signed
// amounts, operation tags and the profile fields printed on statements and payslips.
package normalizer

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnparsableDate is returned when no known date shape matches.
	ErrUnparsableDate = errors.New("unparsable date")
	// ErrUnparsableAmount is returned when the residue after cleaning is not a number.
	ErrUnparsableAmount = errors.New("unparsable amount")
)

// Portuguese month abbreviations mapped to the English ones time.Parse understands.
var monthAbbreviations = []struct{ pt, en string }{
	{"jan", "jan"}, {"fev", "feb"}, {"mar", "mar"}, {"abr", "apr"},
	{"mai", "may"}, {"jun", "jun"}, {"jul", "jul"}, {"ago", "aug"},
	{"set", "sep"}, {"out", "oct"}, {"nov", "nov"}, {"dez", "dec"},
}

var monthNames = map[string]time.Month{
	"janeiro": time.January, "fevereiro": time.February, "março": time.March, "marco": time.March,
	"abril": time.April, "maio": time.May, "junho": time.June, "julho": time.July,
	"agosto": time.August, "setembro": time.September, "outubro": time.October,
	"novembro": time.November, "dezembro": time.December,
}

var textualDate = regexp.MustCompile(`^(\d{1,2})\s+de\s+(\p{L}+)\s+de\s+(\d{4})`)

// explicit layouts, tried in order. yearless layouts get the assumed year appended.
var dateLayouts = []struct {
	layout   string
	yearless bool
}{
	{"2/1/2006", false},
	{"2006-1-2", false},
	{"2-1-2006", false},
	{"2.1.2006", false},
	{"2/1", true},
	{"2 Jan 2006", false},
	{"2 Jan", true},
}

// day-first layouts used as the last resort.
var lenientLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/06",
	"2-1-06",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006T15:04:05",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 Jan 06",
	"20060102",
}

// ParseDate resolves a date fragment. Day-month fragments take assumedYear; a
// non-positive assumedYear means the current year.
func ParseDate(raw string, assumedYear int) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrUnparsableDate
	}
	if assumedYear <= 0 {
		assumedYear = time.Now().Year()
	}

	translated := strings.ToLower(raw)
	for _, m := range monthAbbreviations {
		translated = strings.ReplaceAll(translated, m.pt, m.en)
	}

	for _, l := range dateLayouts {
		value, layout := translated, l.layout
		if l.yearless {
			sep := "/"
			if strings.Contains(layout, " ") {
				sep = " "
			}
			value = value + sep + strconv.Itoa(assumedYear)
			layout = layout + sep + "2006"
		}
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	if m := textualDate.FindStringSubmatch(strings.ToLower(raw)); m != nil {
		if month, ok := monthNames[m[2]]; ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			if t.Day() == day {
				return t, nil
			}
		}
	}

	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.Parse(layout, translated); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, ErrUnparsableDate
}
