package pipeline

import (
	"strings"

	"github.com/emersion/go-ical"

	"icaltool/internal/ics"
	appLog "icaltool/internal/log"
)

// Memo is the run-scoped accumulator for one input file: why events
// were removed, how kept events were mutated, and what failed during
// upload. It is created fresh per file and never persisted.
type Memo struct {
	// Filters maps UID to the reason the event was removed.
	Filters map[string]string

	// Transforms maps UID to the ordered reasons the event was
	// mutated but kept.
	Transforms map[string][]string

	// Fails maps UID to the server message for per-event upload
	// failures.
	Fails map[string]string

	Inserts int
	Splits  int

	// Total is the number of events surviving the filter pipeline.
	Total int
}

func NewMemo() *Memo {
	return &Memo{
		Filters:    make(map[string]string),
		Transforms: make(map[string][]string),
		Fails:      make(map[string]string),
	}
}

func (m *Memo) RecordFilter(uid, reason string) {
	m.Filters[uid] = reason
}

func (m *Memo) RecordTransform(uid, reason string) {
	m.Transforms[uid] = append(m.Transforms[uid], reason)
}

func (m *Memo) RecordFail(uid, msg string) {
	m.Fails[uid] = msg
}

// TransformReasons returns the joined transform reasons for uid, or "".
func (m *Memo) TransformReasons(uid string) string {
	return strings.Join(m.Transforms[uid], ",")
}

// ReportFiltered logs one line per removed event with its recorded
// reason. selecting is the size of the UID allow-list, when one was
// configured.
func (m *Memo) ReportFiltered(removed []*ical.Component, selecting int) {
	if selecting > 0 {
		appLog.Info("filtered events", "count", len(removed), "selecting", selecting)
	}
	for _, c := range removed {
		uid := ics.UID(c)
		if reason, ok := m.Filters[uid]; ok {
			appLog.Info("filtered", "uid", uid, "reason", reason)
		}
	}
}

// ReportTransformed logs one line per mutated-but-kept event.
func (m *Memo) ReportTransformed(events []*ical.Component) {
	for _, c := range events {
		uid := ics.UID(c)
		if reasons := m.TransformReasons(uid); uid != "" && reasons != "" {
			appLog.Info("transformed", "uid", uid, "reasons", reasons)
		}
	}
}

// ReportFailed logs one line per per-event upload failure.
func (m *Memo) ReportFailed(failed []*ical.Component) {
	for _, c := range failed {
		uid := ics.UID(c)
		appLog.Info("failed", "uid", uid, "msg", m.Fails[uid])
	}
}
