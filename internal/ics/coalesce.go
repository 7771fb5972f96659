package ics

import (
	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"icaltool/internal/recur"
)

// CoalesceDaily collapses a recurring daily all-day event into a
// single non-recurring multi-day event: DTEND becomes the rule's UNTIL
// date and the RRULE is removed. A known exporter bug represents
// "event spans N consecutive days" this way.
//
// The event is returned unchanged unless all of these hold: it is a
// VEVENT, DTSTART and DTEND are present and date-only, it has no
// EXDATE, and its rule is FREQ=DAILY;INTERVAL=1 with a plain-date
// UNTIL. When inPlace is false the change is applied to a deep copy.
// The second result reports whether the event was altered.
func CoalesceDaily(ev *ical.Component, inPlace bool) (*ical.Component, bool) {
	if ev.Name != ical.CompEvent {
		return ev, false
	}

	start := ev.Props.Get(ical.PropDateTimeStart)
	end := ev.Props.Get(ical.PropDateTimeEnd)
	if start == nil || end == nil {
		return ev, false
	}
	if !DateOnly(start) || !DateOnly(end) {
		return ev, false
	}
	if len(ev.Props.Values(ical.PropExceptionDates)) > 0 {
		return ev, false
	}

	rp := ev.Props.Get(ical.PropRecurrenceRule)
	if rp == nil {
		return ev, false
	}
	rule := recur.Parse(rp.Value)
	if !rule.FreqKnown || rule.Freq != rrule.DAILY {
		return ev, false
	}
	if !rule.HasInterval || rule.Interval != 1 {
		return ev, false
	}
	if !rule.HasUntil || !rule.UntilValid || !rule.UntilIsDate {
		return ev, false
	}

	out := ev
	if !inPlace {
		out = CloneComponent(ev)
	}
	endProp := out.Props.Get(ical.PropDateTimeEnd)
	endProp.Value = rule.Until.Format("20060102")
	delete(out.Props, ical.PropRecurrenceRule)
	return out, true
}
