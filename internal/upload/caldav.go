package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"icaltool/internal/ics"
	appLog "icaltool/internal/log"
)

// CalDAVService discovers the target calendar collection on login
// and submits events to it with raw PUT requests, so response status,
// reason and body stay visible for retry classification.
type CalDAVService struct {
	Endpoint   string
	Username   string
	Password   string
	CalendarID string
}

func (s *CalDAVService) Login(ctx context.Context) (Session, error) {
	// Redirects are not followed so a 302 surfaces as a response
	// the retry classifier can see.
	base := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	httpClient := webdav.HTTPClientWithBasicAuth(base, s.Username, s.Password)
	client, err := caldav.NewClient(httpClient, s.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("upload: caldav client: %w", err)
	}
	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("upload: find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("upload: find calendar home set: %w", err)
	}
	calendars, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("upload: find calendars: %w", err)
	}
	if len(calendars) == 0 {
		return nil, fmt.Errorf("upload: no calendars found under %s", homeSet)
	}
	picked := calendars[0]
	if s.CalendarID != "" {
		found := false
		for _, c := range calendars {
			if c.Name == s.CalendarID || strings.Contains(c.Path, s.CalendarID) {
				picked = c
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("upload: calendar %q not found", s.CalendarID)
		}
	}
	endpoint, err := url.Parse(s.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("upload: parse endpoint: %w", err)
	}
	appLog.Debug("logged in", "calendar", picked.Path)
	return &calDAVSession{
		httpClient:   httpClient,
		endpoint:     endpoint,
		calendarPath: picked.Path,
	}, nil
}

type calDAVSession struct {
	httpClient   webdav.HTTPClient
	endpoint     *url.URL
	calendarPath string
}

func (s *calDAVSession) SubmitEvent(ctx context.Context, re *RemoteEvent) error {
	ev := ics.CloneComponent(re.Component)
	uid := re.UID
	if uid == "" {
		// The server needs a UID even when the pipeline stripped it.
		uid = strings.ToUpper(uuid.NewString())
		ev.Props.SetText(ical.PropUID, uid)
	}
	if re.ReminderMinutes > 0 && !hasAlarm(ev) {
		alarm := ical.NewComponent(compAlarm)
		alarm.Props.SetText(propAction, "DISPLAY")
		alarm.Props.SetText(propTrigger, fmt.Sprintf("-PT%dM", re.ReminderMinutes))
		ev.Children = append(ev.Children, alarm)
	}

	var buf bytes.Buffer
	if err := ics.Encode(&buf, ics.NewCalendar([]*ical.Component{ev})); err != nil {
		return err
	}

	objPath := s.calendarPath
	if !strings.HasSuffix(objPath, "/") {
		objPath += "/"
	}
	objPath += url.PathEscape(uid) + ".ics"
	target := s.endpoint.ResolveReference(&url.URL{Path: objPath})

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.String(), &buf)
	if err != nil {
		return fmt.Errorf("upload: build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/calendar; charset=utf-8")
	req.Header.Set("If-None-Match", "*")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload: put %s: %w", objPath, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{
		Status: resp.StatusCode,
		Reason: http.StatusText(resp.StatusCode),
		Body:   strings.TrimSpace(string(body)),
	}
}
