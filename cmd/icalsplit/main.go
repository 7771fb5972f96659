package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"icaltool/internal/config"
	appLog "icaltool/internal/log"
	"icaltool/internal/run"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	defaults := config.DefaultOptions()
	configPath := flag.String("config", config.DefaultPath(), "Path to config file")
	quiet := flag.Bool("quiet", defaults.Quiet, "Suppress output")
	dryRun := flag.Bool("dry-run", defaults.DryRun, "Don't actually write anything")
	maxFilesize := flag.Int("max-filesize", defaults.MaxFilesize, "Split input into files of approximate maximum size")
	vcalHack := flag.Bool("vcal-import-workaround", defaults.EnableVCalImportWorkaround, "Undo the iCal Palm vCal import miscalculation")
	startUID := flag.String("start-uid", defaults.StartUID, "Only process events starting with UID")
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
		case "quiet":
			opts.Quiet = *quiet
		case "dry-run":
			opts.DryRun = *dryRun
		case "max-filesize":
			opts.MaxFilesize = *maxFilesize
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
	for _, path := range flag.Args() {
		if err := run.Split(path, opts); err != nil {
			appLog.Error("split failed", err, "path", path)
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
