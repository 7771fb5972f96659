// Package split divides a filtered calendar into batches of events
// and writes each batch as its own numbered .ics file.
package split

import (
	"github.com/emersion/go-ical"

	"icaltool/internal/ics"
)

// SplitByCount walks events in order and emits a calendar for every
// perBatch of them. Shared non-event components (VTIMEZONE and the
// like) are cloned into every output so each file stands alone. A
// perBatch of zero or less puts everything into a single calendar.
func SplitByCount(events, shared []*ical.Component, perBatch int, emit func(*ical.Calendar) error) error {
	var batch []*ical.Component
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		components := make([]*ical.Component, 0, len(shared)+len(batch))
		for _, c := range shared {
			components = append(components, ics.CloneComponent(c))
		}
		components = append(components, batch...)
		batch = nil
		return emit(ics.NewCalendar(components))
	}
	for _, ev := range events {
		batch = append(batch, ev)
		if perBatch > 0 && len(batch) >= perBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// Events returns the VEVENT children of cal in document order.
func Events(cal *ical.Calendar) []*ical.Component {
	var events []*ical.Component
	for _, c := range cal.Children {
		if ics.IsEvent(c) {
			events = append(events, c)
		}
	}
	return events
}
