package ics

import (
	"fmt"
	"sort"
	"time"

	"github.com/emersion/go-ical"
)

// MissingTimezoneError marks a timestamped DTSTART that carries no
// timezone information, which makes the event unorderable.
type MissingTimezoneError struct {
	UID string
}

func (e *MissingTimezoneError) Error() string {
	return fmt.Sprintf("ics: no timezone information on event %q", e.UID)
}

// SortInstant computes a UTC instant for ordering a component. A
// component without DTSTART sorts at the UNIX epoch. Timestamped
// values must carry timezone information; date-only values are
// localized to midnight in tz.
func SortInstant(c *ical.Component, tz *time.Location) (time.Time, error) {
	p := c.Props.Get(ical.PropDateTimeStart)
	if p == nil {
		return time.Unix(0, 0).UTC(), nil
	}
	if DateOnly(p) {
		d, err := DateValue(p)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, tz).UTC(), nil
	}
	if !HasZone(p) {
		return time.Time{}, &MissingTimezoneError{UID: UID(c)}
	}
	t, err := p.DateTime(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("ics: bad DTSTART on event %q: %w", UID(c), err)
	}
	return t.UTC(), nil
}

// SortByStartDescending reorders the calendar's direct children by
// descending start instant. Components with equal instants keep their
// original relative order.
func SortByStartDescending(cal *ical.Calendar, tz *time.Location) error {
	keys := make([]time.Time, len(cal.Children))
	for i, c := range cal.Children {
		k, err := SortInstant(c, tz)
		if err != nil {
			return err
		}
		keys[i] = k
	}

	order := make([]int, len(cal.Children))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return keys[order[i]].After(keys[order[j]])
	})

	sorted := make([]*ical.Component, len(cal.Children))
	for i, idx := range order {
		sorted[i] = cal.Children[idx]
	}
	cal.Children = sorted
	return nil
}
