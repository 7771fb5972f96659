package ics

import (
	"errors"
	"testing"
	"time"

	"github.com/emersion/go-ical"
)

func vtimezone(tzid string) *ical.Component {
	z := ical.NewComponent(ical.CompTimezone)
	if tzid != "" {
		z.Props.SetText("TZID", tzid)
	}
	return z
}

func TestResolveTimezone(t *testing.T) {
	t.Run("no timezone defaults to UTC", func(t *testing.T) {
		loc, err := ResolveTimezone([]*ical.Component{event("E")})
		if err != nil {
			t.Fatal(err)
		}
		if loc != time.UTC {
			t.Errorf("loc = %v, want UTC", loc)
		}
	})

	t.Run("single timezone", func(t *testing.T) {
		loc, err := ResolveTimezone([]*ical.Component{vtimezone("America/Denver"), event("E")})
		if err != nil {
			t.Fatal(err)
		}
		if loc.String() != "America/Denver" {
			t.Errorf("loc = %v, want America/Denver", loc)
		}
	})

	t.Run("empty tzid defaults to UTC", func(t *testing.T) {
		loc, err := ResolveTimezone([]*ical.Component{vtimezone("")})
		if err != nil {
			t.Fatal(err)
		}
		if loc != time.UTC {
			t.Errorf("loc = %v, want UTC", loc)
		}
	})

	t.Run("multiple timezones rejected", func(t *testing.T) {
		_, err := ResolveTimezone([]*ical.Component{vtimezone("UTC"), vtimezone("America/Denver")})
		if !errors.Is(err, ErrMultiTimezone) {
			t.Fatalf("err = %v, want ErrMultiTimezone", err)
		}
	})

	t.Run("unknown tzid", func(t *testing.T) {
		_, err := ResolveTimezone([]*ical.Component{vtimezone("Nowhere/Nowhere")})
		if err == nil {
			t.Fatal("expected error for unknown TZID")
		}
	})
}
