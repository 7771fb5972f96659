// Package recur parses RRULE property values into a typed record once,
// instead of re-splitting the raw string at every use site.
package recur

import (
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Rule is the parsed form of a semicolon-delimited RRULE value.
// Keys are upper-cased before matching; malformed key=value pairs and
// unrecognized keys are skipped.
type Rule struct {
	// FreqName is the raw FREQ value ("" when absent). Freq is the
	// typed frequency, valid only when FreqKnown is true.
	FreqName  string
	Freq      rrule.Frequency
	FreqKnown bool

	Interval    int
	HasInterval bool

	// HasUntil reflects the presence of an UNTIL key. Until holds the
	// parsed end, valid only when UntilValid is true; UntilIsDate
	// marks a plain YYYYMMDD value.
	Until       time.Time
	HasUntil    bool
	UntilValid  bool
	UntilIsDate bool

	WeekStart string
}

var freqByName = map[string]rrule.Frequency{
	"SECONDLY": rrule.SECONDLY,
	"MINUTELY": rrule.MINUTELY,
	"HOURLY":   rrule.HOURLY,
	"DAILY":    rrule.DAILY,
	"WEEKLY":   rrule.WEEKLY,
	"MONTHLY":  rrule.MONTHLY,
	"YEARLY":   rrule.YEARLY,
}

// Parse reads an RRULE value such as "FREQ=DAILY;INTERVAL=1;UNTIL=20050609".
func Parse(value string) Rule {
	var r Rule
	for _, kvp := range strings.Split(value, ";") {
		k, v, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(kvp)), "=")
		if !ok || v == "" {
			continue
		}
		switch k {
		case "FREQ":
			r.FreqName = v
			if f, known := freqByName[v]; known {
				r.Freq = f
				r.FreqKnown = true
			}
		case "INTERVAL":
			if n, err := strconv.Atoi(v); err == nil {
				r.Interval = n
				r.HasInterval = true
			}
		case "UNTIL":
			r.HasUntil = true
			r.Until, r.UntilIsDate, r.UntilValid = parseUntil(v)
		case "WKST":
			r.WeekStart = v
		}
	}
	return r
}

// Neverending reports whether the rule repeats without an end date.
func (r Rule) Neverending() bool {
	return !r.HasUntil
}

func parseUntil(v string) (t time.Time, isDate, valid bool) {
	if t, err := time.ParseInLocation("20060102", v, time.UTC); err == nil {
		return t, true, true
	}
	if t, err := time.Parse("20060102T150405Z", v); err == nil {
		return t, false, true
	}
	if t, err := time.ParseInLocation("20060102T150405", v, time.UTC); err == nil {
		return t, false, true
	}
	return time.Time{}, false, false
}
