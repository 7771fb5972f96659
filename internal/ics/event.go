package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// IsEvent reports whether c is a VEVENT component.
func IsEvent(c *ical.Component) bool {
	return c.Name == ical.CompEvent
}

// UID returns the event's UID property value, or "".
func UID(c *ical.Component) string {
	if p := c.Props.Get(ical.PropUID); p != nil {
		return p.Value
	}
	return ""
}

// Summary returns the event's SUMMARY property value, or "".
func Summary(c *ical.Component) string {
	if p := c.Props.Get(ical.PropSummary); p != nil {
		return p.Value
	}
	return ""
}

// PropText returns the first value of the named property, or "".
func PropText(c *ical.Component, name string) string {
	if p := c.Props.Get(name); p != nil {
		return p.Value
	}
	return ""
}

// DateOnly reports whether a date/time property carries a plain date
// (VALUE=DATE or a value without a time part).
func DateOnly(p *ical.Prop) bool {
	if p == nil {
		return false
	}
	if strings.EqualFold(p.Params.Get(ical.ParamValue), "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// HasZone reports whether a timestamped property value carries
// timezone information (UTC suffix or a TZID parameter).
func HasZone(p *ical.Prop) bool {
	return strings.HasSuffix(p.Value, "Z") || p.Params.Get(ical.ParamTimezoneID) != ""
}

// DateValue parses a date-only property value (first value when the
// property holds a comma-separated list) as midnight UTC.
func DateValue(p *ical.Prop) (time.Time, error) {
	v := p.Value
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	t, err := time.ParseInLocation("20060102", strings.TrimSpace(v), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("ics: bad date value %q: %w", p.Value, err)
	}
	return t, nil
}

// CloneComponent returns a deep copy of comp: properties, parameters
// and children are all copied so mutating the clone cannot leak into
// the original tree.
func CloneComponent(comp *ical.Component) *ical.Component {
	out := ical.NewComponent(comp.Name)
	for name, props := range comp.Props {
		copied := make([]ical.Prop, len(props))
		for i, p := range props {
			p.Params = cloneParams(p.Params)
			copied[i] = p
		}
		out.Props[name] = copied
	}
	for _, child := range comp.Children {
		out.Children = append(out.Children, CloneComponent(child))
	}
	return out
}

func cloneParams(params ical.Params) ical.Params {
	if params == nil {
		return nil
	}
	out := make(ical.Params, len(params))
	for k, vs := range params {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
