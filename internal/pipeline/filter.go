// Package pipeline decides which calendar events survive processing
// and rewrites the ones that do. Rules run in a fixed order and each
// decision is recorded in a per-run Memo.
package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"icaltool/internal/config"
	"icaltool/internal/ics"
	"icaltool/internal/recur"
)

// Pipeline evaluates one component at a time. It carries mutable
// state (the start-UID gate clears once matched) so a Pipeline is
// good for a single tree walk only.
type Pipeline struct {
	opts       *config.Options
	memo       *Memo
	startUID   string
	selectUIDs map[string]bool
	accept     map[string]bool
}

func New(opts *config.Options, memo *Memo) *Pipeline {
	return &Pipeline{
		opts:       opts,
		memo:       memo,
		startUID:   opts.StartUID,
		selectUIDs: opts.SelectUIDSet(),
		accept:     opts.NeverendingSet(),
	}
}

// Selecting reports how many UIDs the allow-list holds.
func (p *Pipeline) Selecting() int {
	return len(p.selectUIDs)
}

// Keep reports whether comp survives the pipeline. VCALENDAR roots
// always pass, anything that is not a VEVENT never does. Events flow
// through the rules in order and may be mutated in place on the way.
func (p *Pipeline) Keep(comp *ical.Component) bool {
	if comp.Name == ical.CompCalendar {
		return true
	}
	if !ics.IsEvent(comp) {
		return false
	}

	uid := ics.UID(comp)
	if p.startUID != "" {
		if strings.ToUpper(uid) != p.startUID {
			return false
		}
		p.startUID = ""
	}
	if !p.opts.PreserveUIDs {
		delete(comp.Props, ical.PropUID)
	}
	if len(p.selectUIDs) > 0 && !p.selectUIDs[strings.ToUpper(uid)] {
		return false
	}
	if !p.opts.AcceptEmptySummary && strings.TrimSpace(ics.Summary(comp)) == "" {
		p.memo.RecordFilter(uid, "empty summary")
		return false
	}

	if raw := ics.PropText(comp, ical.PropRecurrenceRule); raw != "" {
		rule := recur.Parse(raw)
		if rule.FreqName == "" {
			p.memo.RecordFilter(uid, "malformed recurrence rule")
			return false
		}
		if rule.Neverending() && !p.accept[rule.FreqName] {
			p.memo.RecordFilter(uid, fmt.Sprintf("unending %s recurrence", rule.FreqName))
			return false
		}
	}

	if p.opts.EnableVCalImportWorkaround {
		p.applyVCalWorkaround(comp, uid)
	}
	if p.opts.CoalesceEvents {
		if _, ok := ics.CoalesceDaily(comp, true); ok {
			p.memo.RecordTransform(uid, fmt.Sprintf("coalesced %d days", spanDays(comp)))
		}
	}
	if p.opts.TruncateExdates > 0 {
		p.truncateExdates(comp, uid)
	}
	if p.opts.MaxExdates > 0 {
		if n := len(comp.Props.Values(ical.PropExceptionDates)); n > p.opts.MaxExdates {
			p.memo.RecordFilter(uid, fmt.Sprintf("%d EXDATEs, max=%d", n, p.opts.MaxExdates))
			return false
		}
	}
	return true
}

// applyVCalWorkaround undoes the off-by-one-day import of all-day
// Palm vCal events: a two-day span starting a day early becomes a
// one-day event starting on its real date.
func (p *Pipeline) applyVCalWorkaround(comp *ical.Component, uid string) {
	start := comp.Props.Get(ical.PropDateTimeStart)
	end := comp.Props.Get(ical.PropDateTimeEnd)
	if start == nil || end == nil || !ics.DateOnly(start) || !ics.DateOnly(end) {
		return
	}
	sd, err := ics.DateValue(start)
	if err != nil {
		return
	}
	ed, err := ics.DateValue(end)
	if err != nil {
		return
	}
	if ed.Sub(sd) != 48*time.Hour {
		return
	}
	start.Value = sd.AddDate(0, 0, 1).Format("20060102")
	p.memo.RecordTransform(uid, "vcal-import-workaround")
}

// truncateExdates keeps the newest k EXDATE properties, dropping the
// oldest. Raw value text sorts correctly for both date and date-time
// forms.
func (p *Pipeline) truncateExdates(comp *ical.Component, uid string) {
	exdates := comp.Props.Values(ical.PropExceptionDates)
	k := p.opts.TruncateExdates
	if len(exdates) <= k {
		return
	}
	sorted := make([]ical.Prop, len(exdates))
	copy(sorted, exdates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	removed := len(sorted) - k
	comp.Props[ical.PropExceptionDates] = sorted[:k]
	p.memo.RecordTransform(uid, fmt.Sprintf("truncated oldest %d exdate(s)", removed))
}

func spanDays(comp *ical.Component) int {
	sd, err := ics.DateValue(comp.Props.Get(ical.PropDateTimeStart))
	if err != nil {
		return 0
	}
	ed, err := ics.DateValue(comp.Props.Get(ical.PropDateTimeEnd))
	if err != nil {
		return 0
	}
	return int(ed.Sub(sd).Hours() / 24)
}
