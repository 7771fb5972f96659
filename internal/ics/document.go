// Package ics wraps the iCalendar component tree: document I/O,
// breadth-first traversal and pruning, timezone resolution, event
// ordering and the daily-coalescing normalizer.
package ics

import (
	"fmt"
	"io"
	"os"

	"github.com/emersion/go-ical"
)

const productID = "-//icaltool//EN"

// Decode parses a single calendar document from r.
func Decode(r io.Reader) (*ical.Calendar, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("ics: decode: %w", err)
	}
	return cal, nil
}

// LoadFile reads and parses the calendar file at path.
func LoadFile(path string) (*ical.Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Encode serializes cal to w.
func Encode(w io.Writer, cal *ical.Calendar) error {
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("ics: encode: %w", err)
	}
	return nil
}

// WriteFile serializes cal to a new file at path.
func WriteFile(path string, cal *ical.Calendar) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, cal); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// NewCalendar builds a VCALENDAR owning the given components.
func NewCalendar(components []*ical.Component) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, components...)
	return cal
}
