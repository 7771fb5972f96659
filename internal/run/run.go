// Package run ties the stages together for the command-line tools:
// load, sort, filter, then either split to files or upload.
package run

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/emersion/go-ical"

	"icaltool/internal/config"
	"icaltool/internal/ics"
	appLog "icaltool/internal/log"
	"icaltool/internal/pipeline"
	"icaltool/internal/split"
	"icaltool/internal/upload"
)

// Prepared is one input file after sorting and filtering.
type Prepared struct {
	Calendar *ical.Calendar

	// Shared holds clones of the non-event components (VTIMEZONE and
	// friends) captured before filtering strips them, so split output
	// files stay self-contained.
	Shared []*ical.Component

	Removed []*ical.Component
	Memo    *pipeline.Memo

	InputSize   int64
	TotalEvents int
	KeptEvents  int
}

// Prepare loads path, sorts events newest first and runs the filter
// pipeline over the tree.
func Prepare(path string, opts *config.Options) (*Prepared, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("run: stat %s: %w", path, err)
	}
	appLog.Info("reading", "path", path)
	cal, err := ics.LoadFile(path)
	if err != nil {
		return nil, err
	}

	tz, err := ics.ResolveTimezone(cal.Children)
	if err != nil {
		return nil, err
	}
	total := len(split.Events(cal))
	appLog.Info("sorting events by descending date", "events", total)
	if err := ics.SortByStartDescending(cal, tz); err != nil {
		return nil, err
	}

	var shared []*ical.Component
	for _, c := range cal.Children {
		if !ics.IsEvent(c) {
			shared = append(shared, ics.CloneComponent(c))
		}
	}

	memo := pipeline.NewMemo()
	pipe := pipeline.New(opts, memo)
	removed, err := ics.FilterTree(cal.Component, pipe.Keep)
	if err != nil {
		return nil, err
	}
	kept := len(split.Events(cal))
	memo.Total = kept
	memo.ReportFiltered(removed, pipe.Selecting())

	return &Prepared{
		Calendar:    cal,
		Shared:      shared,
		Removed:     removed,
		Memo:        memo,
		InputSize:   fi.Size(),
		TotalEvents: total,
		KeptEvents:  kept,
	}, nil
}

// Split prepares path and writes its events out as numbered files
// sized to fit opts.MaxFilesize.
func Split(path string, opts *config.Options) error {
	p, err := Prepare(path, opts)
	if err != nil {
		return err
	}
	if p.KeptEvents == 0 {
		appLog.Info("no events", "path", path)
		return nil
	}
	perBatch := split.EstimateEventsPerFile(p.InputSize, p.TotalEvents, p.KeptEvents, opts.MaxFilesize)
	writer := &split.Writer{
		InputPath: path,
		DryRun:    opts.DryRun,
		Memo:      p.Memo,
	}
	start := time.Now()
	err = split.SplitByCount(split.Events(p.Calendar), p.Shared, perBatch, writer.Emit)
	appLog.Info("elapsed", "seconds", int(time.Since(start).Seconds()))
	return err
}

// Upload prepares path and submits its events through uploader,
// reporting transformed, failed and inserted events at the end even
// when the run stops early.
func Upload(ctx context.Context, path string, opts *config.Options, uploader *upload.Uploader) error {
	p, err := Prepare(path, opts)
	if err != nil {
		return err
	}
	start := time.Now()
	failed, uploadErr := uploader.UploadCalendar(ctx, p.Calendar, p.Memo)

	p.Memo.ReportTransformed(split.Events(p.Calendar))
	p.Memo.ReportFailed(failed)
	appLog.Info("inserted", "events", p.Memo.Inserts)
	appLog.Info("elapsed", "seconds", int(time.Since(start).Seconds()))
	return uploadErr
}
