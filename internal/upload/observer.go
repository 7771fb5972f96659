package upload

import (
	"time"

	appLog "icaltool/internal/log"
)

// Observer receives progress callbacks during an upload run.
type Observer interface {
	BeforeLogin()
	BeforeSubmit(re *RemoteEvent, n, total int, reasons string)
	AfterSubmit(re *RemoteEvent)
	OnRetry(err error, pause time.Duration)
	OnFailure(uid, msg string)
}

// NopObserver is the quiet-mode observer.
type NopObserver struct{}

func (NopObserver) BeforeLogin()                                {}
func (NopObserver) BeforeSubmit(*RemoteEvent, int, int, string) {}
func (NopObserver) AfterSubmit(*RemoteEvent)                    {}
func (NopObserver) OnRetry(error, time.Duration)                {}
func (NopObserver) OnFailure(string, string)                    {}

// LogObserver reports per-event progress through the shared logger.
type LogObserver struct{}

func (LogObserver) BeforeLogin() {
	appLog.Info("logging in")
}

func (LogObserver) BeforeSubmit(re *RemoteEvent, n, total int, reasons string) {
	uid := re.UID
	if uid == "" {
		uid = "No UID"
	}
	kv := []any{"n", n, "total", total, "uid", uid, "title", firstLine(re.Summary)}
	if re.Recurring() {
		kv = append(kv, "recurrence", firstLine(re.Recurrence))
	} else {
		kv = append(kv, "start", re.Start)
	}
	if reasons != "" {
		kv = append(kv, "transforms", reasons)
	}
	appLog.Info("inserting", kv...)
}

func (LogObserver) AfterSubmit(*RemoteEvent) {}

func (LogObserver) OnRetry(err error, pause time.Duration) {
	appLog.Error("retrying after server error", err, "pause", pause)
}

func (LogObserver) OnFailure(uid, msg string) {
	appLog.Info("failed", "uid", uid, "msg", msg)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\r' || r == '\n' {
			return s[:i]
		}
	}
	return s
}
