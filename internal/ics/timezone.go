package ics

import (
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
)

// ErrMultiTimezone is returned for calendars declaring more than one
// VTIMEZONE. Multi-timezone calendars are not supported.
var ErrMultiTimezone = errors.New("ics: multi-timezone calendars are not supported")

// ResolveTimezone determines the calendar's timezone from its
// components: none declared means UTC, exactly one resolves its TZID
// (UTC when the component declares no TZID), more than one is a
// configuration error.
func ResolveTimezone(components []*ical.Component) (*time.Location, error) {
	var zones []*ical.Component
	for _, c := range components {
		if c.Name == ical.CompTimezone {
			zones = append(zones, c)
		}
	}
	if len(zones) == 0 {
		return time.UTC, nil
	}
	if len(zones) > 1 {
		return nil, ErrMultiTimezone
	}

	tzid := PropText(zones[0], "TZID")
	if tzid == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tzid)
	if err != nil {
		return nil, fmt.Errorf("ics: unknown TZID %q: %w", tzid, err)
	}
	return loc, nil
}
