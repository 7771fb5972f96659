package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options is the resolved option set shared by the icalsplit and
// icalupload entry points. Values come from the YAML config file with
// command-line flags layered on top (flags win).
type Options struct {
	// Remote calendar service (upload mode only).
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	ServerURL  string `yaml:"server_url"`
	CalendarID string `yaml:"calendar_id"`

	// Suppress non-error output.
	Quiet bool `yaml:"quiet"`

	// Don't write files or talk to the network.
	DryRun bool `yaml:"dry_run"`

	// MaxFilesize is the approximate maximum size in bytes of each
	// split output file (split mode only).
	MaxFilesize int `yaml:"max_filesize"`

	// FailDir receives single-event .ics files for events the server
	// rejected (upload mode only).
	FailDir string `yaml:"fail_dir"`

	// ReminderMinutes attaches a display reminder this many minutes
	// before each uploaded event that carries an alarm. ForceReminder
	// attaches it to every event.
	ReminderMinutes int  `yaml:"reminder_minutes"`
	ForceReminder   bool `yaml:"force_reminder"`

	// EnableVCalImportWorkaround undoes the known importer bug that
	// turns a 1-day all-day event into a 2-day event starting 1 day
	// early.
	EnableVCalImportWorkaround bool `yaml:"enable_vcal_import_workaround_hack"`

	// StartUID skips events until the one with this UID is seen.
	StartUID string `yaml:"start_uid"`

	// SelectUIDs, when non-empty, is an allow-list of event UIDs.
	SelectUIDs []string `yaml:"select_uids"`

	// PreserveUIDs keeps UID properties on output events; when false
	// they are stripped (bookkeeping still uses the original value).
	PreserveUIDs bool `yaml:"preserve_uids"`

	// CoalesceEvents collapses daily-recurring all-day events into a
	// single multi-day event.
	CoalesceEvents bool `yaml:"coalesce_events"`

	// TruncateExdates keeps only the newest N recurrence exceptions.
	TruncateExdates int `yaml:"truncate_exdates"`

	// MaxExdates rejects events with more than N recurrence exceptions.
	MaxExdates int `yaml:"max_exdates"`

	// AcceptNeverending lists recurrence frequencies that are allowed
	// to lack an UNTIL end date.
	AcceptNeverending []string `yaml:"accept_neverending_recurrences"`

	// AcceptEmptySummary keeps events whose summary is empty.
	AcceptEmptySummary bool `yaml:"accept_empty_summary"`
}

// DefaultOptions returns the built-in defaults. Load unmarshals the
// config file over this value, so absent keys keep their defaults.
func DefaultOptions() *Options {
	return &Options{
		MaxFilesize:                524288,
		ReminderMinutes:            30,
		MaxExdates:                 72,
		EnableVCalImportWorkaround: true,
		PreserveUIDs:               true,
		CoalesceEvents:             true,
		AcceptNeverending:          []string{"DAILY", "WEEKLY", "MONTHLY", "YEARLY"},
	}
}

// Normalize canonicalizes UID and frequency values so comparisons are
// case-insensitive, and restores required defaults on emptied fields.
func (o *Options) Normalize() {
	o.StartUID = strings.ToUpper(strings.TrimSpace(o.StartUID))

	uids := o.SelectUIDs[:0]
	for _, uid := range o.SelectUIDs {
		uid = strings.ToUpper(strings.TrimSpace(uid))
		if uid != "" {
			uids = append(uids, uid)
		}
	}
	o.SelectUIDs = uids

	if o.AcceptNeverending == nil {
		o.AcceptNeverending = []string{"DAILY", "WEEKLY", "MONTHLY", "YEARLY"}
	}
	for i, freq := range o.AcceptNeverending {
		o.AcceptNeverending[i] = strings.ToUpper(strings.TrimSpace(freq))
	}

	if o.MaxFilesize <= 0 {
		o.MaxFilesize = 524288
	}
}

// SelectUIDSet returns the allow-list as a set; empty means "no
// filtering by UID".
func (o *Options) SelectUIDSet() map[string]bool {
	if len(o.SelectUIDs) == 0 {
		return nil
	}
	set := make(map[string]bool, len(o.SelectUIDs))
	for _, uid := range o.SelectUIDs {
		set[uid] = true
	}
	return set
}

// NeverendingSet returns the accepted neverending frequencies as a set.
func (o *Options) NeverendingSet() map[string]bool {
	set := make(map[string]bool, len(o.AcceptNeverending))
	for _, freq := range o.AcceptNeverending {
		set[freq] = true
	}
	return set
}

// ValidateUpload checks the fields upload mode cannot run without.
func (o *Options) ValidateUpload() error {
	if o.Username == "" {
		return errors.New("config: username is required")
	}
	if o.Password == "" {
		return errors.New("config: password is required")
	}
	if o.ServerURL == "" {
		return errors.New("config: server_url is required")
	}
	if o.FailDir != "" {
		info, err := os.Stat(o.FailDir)
		if err != nil || !info.IsDir() {
			return errors.New("config: fail_dir is not a directory: " + o.FailDir)
		}
	}
	return nil
}

// DefaultPath returns the per-user config location (~/.icaltool.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".icaltool.yaml")
}

// Load reads the YAML config at path. A missing file is not an error:
// the defaults are returned so the tool runs config-free.
func Load(path string) (*Options, error) {
	opts := DefaultOptions()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return opts, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, err
	}
	opts.Normalize()
	return opts, nil
}
