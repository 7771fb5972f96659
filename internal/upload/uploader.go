package upload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"icaltool/internal/ics"
	"icaltool/internal/pipeline"
)

const quotaBody = "The user has exceeded their quota, and cannot " +
	"currently perform this operation"

// Uploader submits the events of a calendar strictly in order. Known
// transient server errors are retried without limit, permanent
// per-event rejections are set aside in FailDir, and anything else
// aborts the run.
type Uploader struct {
	Service  Service
	DryRun   bool
	FailDir  string
	Filter   EntryFilter
	Observer Observer

	QuotaPause time.Duration
	RetryPause time.Duration

	session Session
	sleep   func(time.Duration)
}

func NewUploader(service Service, dryRun bool, failDir string) *Uploader {
	return &Uploader{
		Service:    service,
		DryRun:     dryRun,
		FailDir:    failDir,
		Observer:   NopObserver{},
		QuotaPause: 5 * time.Minute,
		RetryPause: 5 * time.Second,
		sleep:      time.Sleep,
	}
}

// UploadCalendar submits every VEVENT child of cal and returns the
// components the server permanently rejected. A non-nil error means
// the run stopped early; the returned slice still holds everything
// rejected before that point.
func (u *Uploader) UploadCalendar(ctx context.Context, cal *ical.Calendar, memo *pipeline.Memo) ([]*ical.Component, error) {
	var events []*ical.Component
	for _, c := range cal.Children {
		if ics.IsEvent(c) {
			events = append(events, c)
		}
	}
	var failed []*ical.Component
	for i, ev := range events {
		err := u.uploadEvent(ctx, ev, i+1, len(events), memo)
		if err == nil {
			continue
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && isEventFailure(apiErr) {
			u.recordFailure(ev, apiErr, memo)
			failed = append(failed, ev)
			continue
		}
		return failed, err
	}
	return failed, nil
}

func (u *Uploader) uploadEvent(ctx context.Context, ev *ical.Component, n, total int, memo *pipeline.Memo) error {
	re, err := BuildRemoteEvent(ev)
	if err != nil {
		return err
	}
	if u.Filter != nil && !u.Filter(ev, re) {
		return nil
	}
	for {
		if u.session == nil {
			u.Observer.BeforeLogin()
			if u.DryRun {
				u.session = dryRunSession{}
			} else {
				s, err := u.Service.Login(ctx)
				if err != nil {
					return err
				}
				u.session = s
			}
		}
		u.Observer.BeforeSubmit(re, n, total, memo.TransformReasons(re.UID))
		err := u.session.SubmitEvent(ctx, re)
		if err == nil {
			memo.Inserts++
			u.Observer.AfterSubmit(re)
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if pause, relogin, ok := u.classifyRetry(apiErr); ok {
				u.Observer.OnRetry(err, pause)
				if relogin {
					u.session = nil
				}
				u.sleep(pause)
				if ctx.Err() != nil {
					return ctx.Err()
				}
				continue
			}
		}
		return err
	}
}

// classifyRetry matches the transient server errors worth waiting
// out: quota exhaustion (which also invalidates the session),
// redirects, and a known flavor of 500.
func (u *Uploader) classifyRetry(e *APIError) (pause time.Duration, relogin, ok bool) {
	switch {
	case e.Status == 403 && e.Reason == "Forbidden" && e.Body == quotaBody:
		return u.QuotaPause, true, true
	case e.Status == 302:
		return u.RetryPause, false, true
	case e.Status == 500 && e.Reason == "Internal Server Error" &&
		e.Body == "Service error: could not insert entry":
		return u.RetryPause, false, true
	}
	return 0, false, false
}

func isEventFailure(e *APIError) bool {
	return e.Status == 400 || e.Status == 409
}

// recordFailure notes the rejection and writes the event to FailDir
// as a standalone .ics so it can be fixed up and resubmitted.
func (u *Uploader) recordFailure(ev *ical.Component, apiErr *APIError, memo *pipeline.Memo) {
	uid := ics.UID(ev)
	msg := apiErr.Error()
	if apiErr.Reason == "Conflict" {
		msg = apiErr.Reason
	}
	memo.RecordFail(uid, msg)
	u.Observer.OnFailure(uid, msg)
	if u.DryRun || u.FailDir == "" {
		return
	}
	name := uid
	if name == "" {
		name = strings.ToUpper(uuid.NewString())
	}
	path := filepath.Join(u.FailDir, name+".ics")
	cal := ics.NewCalendar([]*ical.Component{ics.CloneComponent(ev)})
	if err := ics.WriteFile(path, cal); err != nil {
		u.Observer.OnFailure(uid, fmt.Sprintf("could not save to %s: %v", path, err))
	}
}

// dryRunSession accepts everything without touching the network.
type dryRunSession struct{}

func (dryRunSession) SubmitEvent(context.Context, *RemoteEvent) error {
	return nil
}
