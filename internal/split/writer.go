package split

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-ical"

	"icaltool/internal/ics"
	appLog "icaltool/internal/log"
	"icaltool/internal/pipeline"
)

// Writer emits split calendars as numbered files next to the input:
// events.ics becomes events-000000.ics, events-000001.ics and so on.
// Existing files are never overwritten.
type Writer struct {
	InputPath string
	DryRun    bool
	Memo      *pipeline.Memo
}

func (w *Writer) Emit(cal *ical.Calendar) error {
	path := w.nextPath()
	w.Memo.Splits++
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("split: %s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("split: stat %s: %w", path, err)
	}

	events := Events(cal)
	for _, ev := range events {
		uid := ics.UID(ev)
		if reasons := w.Memo.TransformReasons(uid); uid != "" && reasons != "" {
			appLog.Info("transformed", "uid", uid, "reasons", reasons)
		}
	}

	var size int64
	if !w.DryRun {
		if err := ics.WriteFile(path, cal); err != nil {
			return err
		}
		if fi, err := os.Stat(path); err == nil {
			size = fi.Size()
		}
	}
	appLog.Info("wrote split file", "path", path, "events", len(events), "bytes", size)
	return nil
}

func (w *Writer) nextPath() string {
	dir := filepath.Dir(w.InputPath)
	base := filepath.Base(w.InputPath)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s-%06d%s", prefix, w.Memo.Splits, ext))
}
