package pipeline

import (
	"fmt"
	"testing"

	"github.com/emersion/go-ical"

	"icaltool/internal/config"
	"icaltool/internal/ics"
)

func testOptions() *config.Options {
	opts := config.DefaultOptions()
	opts.Normalize()
	return opts
}

func testEvent(uid, summary string) *ical.Component {
	ev := ical.NewComponent(ical.CompEvent)
	ev.Props.SetText(ical.PropUID, uid)
	ev.Props.SetText(ical.PropSummary, summary)
	return ev
}

func setProp(c *ical.Component, name, value string) {
	p := ical.NewProp(name)
	p.Value = value
	c.Props.Set(p)
}

func addProp(c *ical.Component, name, value string) {
	p := ical.NewProp(name)
	p.Value = value
	c.Props.Add(p)
}

func TestKeepComponentKinds(t *testing.T) {
	p := New(testOptions(), NewMemo())
	if !p.Keep(ical.NewComponent(ical.CompCalendar)) {
		t.Error("calendar root rejected")
	}
	if p.Keep(ical.NewComponent(ical.CompTimezone)) {
		t.Error("non-event component kept")
	}
	if !p.Keep(testEvent("A", "meeting")) {
		t.Error("plain event rejected")
	}
}

func TestKeepStartUID(t *testing.T) {
	opts := testOptions()
	opts.StartUID = "b"
	opts.Normalize()
	memo := NewMemo()
	p := New(opts, memo)

	if p.Keep(testEvent("A", "first")) {
		t.Error("event before start UID kept")
	}
	if len(memo.Filters) != 0 {
		t.Error("start UID skip recorded a filter reason")
	}
	if !p.Keep(testEvent("B", "second")) {
		t.Error("start UID event rejected")
	}
	if !p.Keep(testEvent("C", "third")) {
		t.Error("event after start UID rejected")
	}
}

func TestKeepStripsUIDs(t *testing.T) {
	opts := testOptions()
	opts.PreserveUIDs = false
	memo := NewMemo()
	p := New(opts, memo)

	ev := testEvent("KEEPME", "")
	if p.Keep(ev) {
		t.Fatal("empty summary kept")
	}
	if ics.UID(ev) != "" {
		t.Error("UID survived stripping")
	}
	// Bookkeeping still uses the original UID.
	if memo.Filters["KEEPME"] != "empty summary" {
		t.Errorf("Filters[KEEPME] = %q, want %q", memo.Filters["KEEPME"], "empty summary")
	}
}

func TestKeepSelectUIDs(t *testing.T) {
	opts := testOptions()
	opts.SelectUIDs = []string{"wanted"}
	opts.Normalize()
	memo := NewMemo()
	p := New(opts, memo)

	if p.Keep(testEvent("OTHER", "x")) {
		t.Error("unselected event kept")
	}
	if len(memo.Filters) != 0 {
		t.Error("selection skip recorded a filter reason")
	}
	if !p.Keep(testEvent("WANTED", "x")) {
		t.Error("selected event rejected")
	}
	if p.Selecting() != 1 {
		t.Errorf("Selecting() = %d, want 1", p.Selecting())
	}
}

func TestKeepEmptySummary(t *testing.T) {
	memo := NewMemo()
	p := New(testOptions(), memo)
	if p.Keep(testEvent("E", "  \n ")) {
		t.Error("whitespace summary kept")
	}
	if memo.Filters["E"] != "empty summary" {
		t.Errorf("reason = %q", memo.Filters["E"])
	}

	opts := testOptions()
	opts.AcceptEmptySummary = true
	p = New(opts, NewMemo())
	if !p.Keep(testEvent("E", "")) {
		t.Error("empty summary rejected despite accept_empty_summary")
	}
}

func TestKeepRecurrenceRules(t *testing.T) {
	tests := []struct {
		name   string
		rrule  string
		kept   bool
		reason string
	}{
		{"bounded daily", "FREQ=DAILY;INTERVAL=1;UNTIL=20990101", true, ""},
		{"unending weekly accepted by default", "FREQ=WEEKLY", true, ""},
		{"unending hourly", "FREQ=HOURLY", false, "unending HOURLY recurrence"},
		{"missing freq", "INTERVAL=2", false, "malformed recurrence rule"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			memo := NewMemo()
			p := New(testOptions(), memo)
			ev := testEvent("E", "x")
			setProp(ev, ical.PropRecurrenceRule, tc.rrule)
			if got := p.Keep(ev); got != tc.kept {
				t.Fatalf("Keep = %v, want %v", got, tc.kept)
			}
			if memo.Filters["E"] != tc.reason {
				t.Errorf("reason = %q, want %q", memo.Filters["E"], tc.reason)
			}
		})
	}
}

func TestKeepVCalImportWorkaround(t *testing.T) {
	memo := NewMemo()
	p := New(testOptions(), memo)

	ev := testEvent("E", "x")
	setProp(ev, ical.PropDateTimeStart, "20240101")
	setProp(ev, ical.PropDateTimeEnd, "20240103")
	if !p.Keep(ev) {
		t.Fatal("event rejected")
	}
	if got := ev.Props.Get(ical.PropDateTimeStart).Value; got != "20240102" {
		t.Errorf("DTSTART = %q, want 20240102", got)
	}
	if memo.TransformReasons("E") != "vcal-import-workaround" {
		t.Errorf("transforms = %q", memo.TransformReasons("E"))
	}

	// A one-day span is left alone.
	memo = NewMemo()
	p = New(testOptions(), memo)
	ev = testEvent("F", "x")
	setProp(ev, ical.PropDateTimeStart, "20240101")
	setProp(ev, ical.PropDateTimeEnd, "20240102")
	if !p.Keep(ev) {
		t.Fatal("event rejected")
	}
	if got := ev.Props.Get(ical.PropDateTimeStart).Value; got != "20240101" {
		t.Errorf("DTSTART = %q, want unchanged", got)
	}
	if memo.TransformReasons("F") != "" {
		t.Errorf("transforms = %q", memo.TransformReasons("F"))
	}
}

func TestKeepCoalesce(t *testing.T) {
	opts := testOptions()
	opts.EnableVCalImportWorkaround = false
	memo := NewMemo()
	p := New(opts, memo)

	ev := testEvent("E", "vacation")
	setProp(ev, ical.PropDateTimeStart, "20240101")
	setProp(ev, ical.PropDateTimeEnd, "20240102")
	setProp(ev, ical.PropRecurrenceRule, "FREQ=DAILY;INTERVAL=1;UNTIL=20240110")
	if !p.Keep(ev) {
		t.Fatal("event rejected")
	}
	if ev.Props.Get(ical.PropRecurrenceRule) != nil {
		t.Error("RRULE survived")
	}
	if got := ev.Props.Get(ical.PropDateTimeEnd).Value; got != "20240110" {
		t.Errorf("DTEND = %q, want 20240110", got)
	}
	if memo.TransformReasons("E") != "coalesced 9 days" {
		t.Errorf("transforms = %q, want coalesced 9 days", memo.TransformReasons("E"))
	}
}

func TestKeepTruncateExdates(t *testing.T) {
	opts := testOptions()
	opts.TruncateExdates = 2
	memo := NewMemo()
	p := New(opts, memo)

	ev := testEvent("E", "standup")
	setProp(ev, ical.PropRecurrenceRule, "FREQ=DAILY;UNTIL=20990101")
	for i := 1; i <= 5; i++ {
		addProp(ev, ical.PropExceptionDates, fmt.Sprintf("2024010%d", i))
	}
	if !p.Keep(ev) {
		t.Fatal("event rejected")
	}
	kept := ev.Props.Values(ical.PropExceptionDates)
	if len(kept) != 2 {
		t.Fatalf("kept %d exdates, want 2", len(kept))
	}
	if kept[0].Value != "20240105" || kept[1].Value != "20240104" {
		t.Errorf("kept exdates %q, %q; want the newest two", kept[0].Value, kept[1].Value)
	}
	if memo.TransformReasons("E") != "truncated oldest 3 exdate(s)" {
		t.Errorf("transforms = %q", memo.TransformReasons("E"))
	}
}

func TestKeepMaxExdates(t *testing.T) {
	opts := testOptions()
	opts.MaxExdates = 2
	memo := NewMemo()
	p := New(opts, memo)

	ev := testEvent("E", "standup")
	for i := 1; i <= 3; i++ {
		addProp(ev, ical.PropExceptionDates, fmt.Sprintf("2024010%d", i))
	}
	if p.Keep(ev) {
		t.Fatal("event over the exdate limit kept")
	}
	if memo.Filters["E"] != "3 EXDATEs, max=2" {
		t.Errorf("reason = %q", memo.Filters["E"])
	}
}
