package ics

import (
	"errors"
	"testing"
	"time"

	"github.com/emersion/go-ical"
)

func setProp(c *ical.Component, name, value string, params map[string]string) {
	p := ical.NewProp(name)
	p.Value = value
	for k, v := range params {
		p.Params.Set(k, v)
	}
	c.Props.Set(p)
}

func event(uid string) *ical.Component {
	return newComp(ical.CompEvent, uid)
}

func TestSortInstant(t *testing.T) {
	denver, err := time.LoadLocation("America/Denver")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("no dtstart sorts at epoch", func(t *testing.T) {
		got, err := SortInstant(event("E"), time.UTC)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(time.Unix(0, 0)) {
			t.Errorf("got %v, want epoch", got)
		}
	})

	t.Run("date only localizes to calendar timezone", func(t *testing.T) {
		ev := event("E")
		setProp(ev, ical.PropDateTimeStart, "20240115", nil)
		got, err := SortInstant(ev, denver)
		if err != nil {
			t.Fatal(err)
		}
		want := time.Date(2024, 1, 15, 0, 0, 0, 0, denver).UTC()
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("utc timestamp", func(t *testing.T) {
		ev := event("E")
		setProp(ev, ical.PropDateTimeStart, "20240115T120000Z", nil)
		got, err := SortInstant(ev, denver)
		if err != nil {
			t.Fatal(err)
		}
		want := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("timestamp without zone is an error", func(t *testing.T) {
		ev := event("FLOATING")
		setProp(ev, ical.PropDateTimeStart, "20240115T120000", nil)
		_, err := SortInstant(ev, time.UTC)
		var mte *MissingTimezoneError
		if !errors.As(err, &mte) {
			t.Fatalf("err = %v, want MissingTimezoneError", err)
		}
		if mte.UID != "FLOATING" {
			t.Errorf("UID = %q, want FLOATING", mte.UID)
		}
	})
}

func TestSortByStartDescending(t *testing.T) {
	old := event("OLD")
	setProp(old, ical.PropDateTimeStart, "20200101", nil)
	mid := event("MID")
	setProp(mid, ical.PropDateTimeStart, "20220601", nil)
	newest := event("NEW")
	setProp(newest, ical.PropDateTimeStart, "20240115", nil)
	tie := event("TIE")
	setProp(tie, ical.PropDateTimeStart, "20220601", nil)
	noStart := event("EPOCH")

	cal := ical.NewCalendar()
	cal.Children = []*ical.Component{old, mid, newest, tie, noStart}
	if err := SortByStartDescending(cal, time.UTC); err != nil {
		t.Fatal(err)
	}

	want := []string{"NEW", "MID", "TIE", "OLD", "EPOCH"}
	for i, c := range cal.Children {
		if UID(c) != want[i] {
			t.Errorf("position %d = %q, want %q", i, UID(c), want[i])
		}
	}
}

func TestSortByStartDescendingPropagatesError(t *testing.T) {
	bad := event("BAD")
	setProp(bad, ical.PropDateTimeStart, "20240115T120000", nil)
	cal := ical.NewCalendar()
	cal.Children = []*ical.Component{bad}
	if err := SortByStartDescending(cal, time.UTC); err == nil {
		t.Fatal("expected error for floating timestamp")
	}
}
