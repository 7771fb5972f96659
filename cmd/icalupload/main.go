package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"icaltool/internal/config"
	appLog "icaltool/internal/log"
	"icaltool/internal/run"
	"icaltool/internal/upload"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	defaults := config.DefaultOptions()
	configPath := flag.String("config", config.DefaultPath(), "Path to config file")
	username := flag.String("username", "", "Calendar account username")
	password := flag.String("password", "", "Calendar account password")
	serverURL := flag.String("server-url", "", "CalDAV server URL")
	calendarID := flag.String("calendar-id", "", "Target calendar name or path fragment")
	quiet := flag.Bool("quiet", defaults.Quiet, "Suppress output")
	dryRun := flag.Bool("dry-run", defaults.DryRun, "Don't actually upload anything")
	failDir := flag.String("fail-dir", defaults.FailDir, "Directory to receive not-uploaded .ics files")
	reminderMinutes := flag.Int("reminder-minutes", defaults.ReminderMinutes, "Reminder time for events")
	forceReminder := flag.Bool("force-reminder", defaults.ForceReminder, "Force a reminder to be set for all events")
	vcalHack := flag.Bool("vcal-import-workaround", defaults.EnableVCalImportWorkaround, "Undo the iCal Palm vCal import miscalculation")
	startUID := flag.String("start-uid", defaults.StartUID, "Only start uploading events starting with UID")
	selectUIDs := flag.String("select-uids", "", "Only select events with the given UIDs (comma-delimited)")
	preserveUIDs := flag.Bool("preserve-uids", defaults.PreserveUIDs, "Keep UID values from the calendar file")
	coalesce := flag.Bool("coalesce-events", defaults.CoalesceEvents, "Coalesce recurring daily events into a single multi-day event")
	truncateExdates := flag.Int("truncate-exdates", defaults.TruncateExdates, "Keep only the newest N recurrence exceptions")
	maxExdates := flag.Int("max-exdates", defaults.MaxExdates, "Accept events with up to N recurrence exceptions")
	neverending := flag.String("accept-neverending-recurrences", strings.Join(defaults.AcceptNeverending, ","), "Accepted kinds of neverending recurrences (comma-delimited)")
	emptySummary := flag.Bool("accept-empty-summary", defaults.AcceptEmptySummary, "Accept events with empty summaries")
	flag.Parse()

	opts, err := config.Load(*configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", *configPath)
		return 1
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "username":
			opts.Username = *username
		case "password":
			opts.Password = *password
		case "server-url":
			opts.ServerURL = *serverURL
		case "calendar-id":
			opts.CalendarID = *calendarID
		case "quiet":
			opts.Quiet = *quiet
		case "dry-run":
			opts.DryRun = *dryRun
		case "fail-dir":
			opts.FailDir = *failDir
		case "reminder-minutes":
			opts.ReminderMinutes = *reminderMinutes
		case "force-reminder":
			opts.ForceReminder = *forceReminder
		case "vcal-import-workaround":
			opts.EnableVCalImportWorkaround = *vcalHack
		case "start-uid":
			opts.StartUID = *startUID
		case "select-uids":
			opts.SelectUIDs = splitList(*selectUIDs)
		case "preserve-uids":
			opts.PreserveUIDs = *preserveUIDs
		case "coalesce-events":
			opts.CoalesceEvents = *coalesce
		case "truncate-exdates":
			opts.TruncateExdates = *truncateExdates
		case "max-exdates":
			opts.MaxExdates = *maxExdates
		case "accept-neverending-recurrences":
			opts.AcceptNeverending = splitList(*neverending)
		case "accept-empty-summary":
			opts.AcceptEmptySummary = *emptySummary
		}
	})
	opts.Normalize()
	appLog.SetQuiet(opts.Quiet)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "No files!")
		return 1
	}
	if err := opts.ValidateUpload(); err != nil {
		appLog.Error("invalid configuration", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	service := &upload.CalDAVService{
		Endpoint:   opts.ServerURL,
		Username:   opts.Username,
		Password:   opts.Password,
		CalendarID: opts.CalendarID,
	}
	uploader := upload.NewUploader(service, opts.DryRun, opts.FailDir)
	uploader.Filter = upload.ReminderFilter(opts.ReminderMinutes, opts.ForceReminder)
	if !opts.Quiet {
		uploader.Observer = upload.LogObserver{}
	}

	for _, path := range flag.Args() {
		if err := run.Upload(ctx, path, opts, uploader); err != nil {
			appLog.Error("upload failed", err, "path", path)
			return 1
		}
	}
	return 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
