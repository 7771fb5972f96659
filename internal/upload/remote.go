package upload

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"icaltool/internal/ics"
)

// Local names for pieces go-ical does not export constants for.
const (
	compAlarm   = "VALARM"
	propAction  = "ACTION"
	propTrigger = "TRIGGER"
)

// RemoteEvent is one event prepared for submission: the source
// component plus the derived fields observers and sessions need.
type RemoteEvent struct {
	Component *ical.Component

	UID          string
	Summary      string
	Description  string
	Location     string
	Transparency string

	// Start and End are set for non-recurring events only, in the
	// server's expected form: RFC 3339 with milliseconds for
	// timestamped events, YYYY-MM-DD for all-day ones.
	Start  string
	End    string
	AllDay bool

	// Recurrence holds the serialized DTSTART/DTEND/RRULE/EXDATE
	// block for recurring events.
	Recurrence string

	// ReminderMinutes is set by an EntryFilter; zero means no
	// reminder.
	ReminderMinutes int
}

func (re *RemoteEvent) Recurring() bool {
	return re.Recurrence != ""
}

// EntryFilter runs after an event is prepared and before submission.
// Returning false skips the event without recording a failure.
type EntryFilter func(ev *ical.Component, re *RemoteEvent) bool

// ReminderFilter returns an EntryFilter that attaches a reminder to
// events carrying a VALARM, or to every event when force is set.
func ReminderFilter(minutes int, force bool) EntryFilter {
	return func(ev *ical.Component, re *RemoteEvent) bool {
		if minutes <= 0 {
			return true
		}
		if force || hasAlarm(ev) {
			re.ReminderMinutes = minutes
		}
		return true
	}
}

func hasAlarm(ev *ical.Component) bool {
	for _, c := range ev.Children {
		if c.Name == compAlarm {
			return true
		}
	}
	return false
}

// BuildRemoteEvent prepares ev for submission. Timestamped start or
// end values without timezone information are a data error, not a
// per-event failure.
func BuildRemoteEvent(ev *ical.Component) (*RemoteEvent, error) {
	re := &RemoteEvent{
		Component:    ev,
		UID:          ics.UID(ev),
		Summary:      strings.TrimSpace(ics.Summary(ev)),
		Description:  strings.TrimSpace(ics.PropText(ev, ical.PropDescription)),
		Location:     strings.TrimSpace(ics.PropText(ev, ical.PropLocation)),
		Transparency: ics.PropText(ev, ical.PropTransparency),
	}
	if ics.PropText(ev, ical.PropRecurrenceRule) != "" {
		re.Recurrence = recurrenceBlock(ev)
		return re, nil
	}
	start := ev.Props.Get(ical.PropDateTimeStart)
	end := ev.Props.Get(ical.PropDateTimeEnd)
	if start == nil || end == nil {
		return nil, fmt.Errorf("upload: event %q has no start or end", re.UID)
	}
	var err error
	if re.Start, err = remoteTimeString(start, re.UID); err != nil {
		return nil, err
	}
	if re.End, err = remoteTimeString(end, re.UID); err != nil {
		return nil, err
	}
	re.AllDay = ics.DateOnly(start)
	return re, nil
}

func remoteTimeString(p *ical.Prop, uid string) (string, error) {
	if ics.DateOnly(p) {
		d, err := ics.DateValue(p)
		if err != nil {
			return "", fmt.Errorf("upload: event %q: %w", uid, err)
		}
		return d.Format("2006-01-02"), nil
	}
	if !ics.HasZone(p) {
		return "", &ics.MissingTimezoneError{UID: uid}
	}
	t, err := p.DateTime(time.UTC)
	if err != nil {
		return "", fmt.Errorf("upload: event %q: %w", uid, err)
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z"), nil
}

// recurrenceBlock serializes the recurrence-defining properties the
// way they appear on the wire, one CRLF-terminated line each.
func recurrenceBlock(ev *ical.Component) string {
	var b strings.Builder
	for _, name := range []string{
		ical.PropDateTimeStart,
		ical.PropDateTimeEnd,
		ical.PropRecurrenceRule,
		ical.PropExceptionDates,
	} {
		for _, p := range ev.Props.Values(name) {
			writePropLine(&b, &p)
		}
	}
	return b.String()
}

func writePropLine(b *strings.Builder, p *ical.Prop) {
	b.WriteString(p.Name)
	for key, values := range p.Params {
		b.WriteByte(';')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(strings.Join(values, ","))
	}
	b.WriteByte(':')
	b.WriteString(p.Value)
	b.WriteString("\r\n")
}
