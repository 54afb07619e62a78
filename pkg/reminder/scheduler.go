// Package reminder decides, on every poll, which event reminders and which daily briefing
// a signed in user should be notified about.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/ischedule/ischedule/pkg/calendar"
	"github.com/ischedule/ischedule/pkg/notification"
	"github.com/ischedule/ischedule/pkg/storage"
	log "github.com/sirupsen/logrus"
)

const (
	BriefingTag = "daily-briefing"

	markerLayout = "2006-01-02"
	timeLayout   = "15:04"
	dateLayout   = "02/01"
)

// MarkerStore persists the date of the last daily briefing.
type MarkerStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

// NotificationSink hands a notification over for delivery. Delivery is fire-and-forget.
type NotificationSink interface {
	Notify(ctx context.Context, username string, n notification.Notification)
}

type Options struct {
	BriefingHour int
	Location     *time.Location
	Icon         string
}

// Scheduler is the polling state of one session. It is not safe for concurrent Poll calls.
type Scheduler struct {
	username string
	markers  MarkerStore
	sink     NotificationSink
	messages *Messages
	options  Options

	lastCheck time.Time
}

// NewScheduler starts the reminder window at start, so reminders due before it are never sent.
func NewScheduler(username string, markers MarkerStore, sink NotificationSink, messages *Messages, options Options, start time.Time) *Scheduler {
	if options.Location == nil {
		options.Location = time.Local
	}
	return &Scheduler{
		username:  username,
		markers:   markers,
		sink:      sink,
		messages:  messages,
		options:   options,
		lastCheck: start,
	}
}

func (s *Scheduler) LastCheck() time.Time {
	return s.lastCheck
}

// Poll sends the reminders whose trigger time lies in (last check, now] and the daily
// briefing when it is due.
func (s *Scheduler) Poll(ctx context.Context, now time.Time, events []calendar.Event) error {
	if now.After(s.lastCheck) {
		for _, event := range events {
			trigger, ok := event.TriggerTime()
			if !ok {
				continue
			}
			if trigger.After(s.lastCheck) && !trigger.After(now) {
				s.sink.Notify(ctx, s.username, s.reminder(event))
			}
		}
		s.lastCheck = now
	}

	return s.briefIfDue(ctx, now, events)
}

func (s *Scheduler) reminder(event calendar.Event) notification.Notification {
	titleKey := keyReminderTitle
	if event.IsMajorEvent {
		titleKey = keyReminderTitleMajor
	}
	start := event.StartTime.In(s.options.Location)

	var body string
	if days := calendar.ReminderDays(*event.ReminderMinutes); days <= 0 {
		body = s.messages.localize(keyReminderBodyToday, map[string]any{
			"Time": start.Format(timeLayout),
		})
	} else {
		body = s.messages.localizePlural(keyReminderBodyAhead, map[string]any{
			"Date": start.Format(dateLayout),
			"Days": days,
		}, days)
	}

	log.WithField("user", s.username).WithField("event", event.ID).Debug("reminder due")
	return notification.Notification{
		Title: s.messages.localize(titleKey, map[string]any{"Title": event.Title}),
		Body:  body,
		Icon:  s.options.Icon,
	}
}

// briefIfDue sends at most one briefing per local day. The day is marked even when there
// is nothing upcoming to report.
func (s *Scheduler) briefIfDue(ctx context.Context, now time.Time, events []calendar.Event) error {
	local := now.In(s.options.Location)
	if local.Hour() < s.options.BriefingHour {
		return nil
	}

	today := local.Format(markerLayout)
	key := storage.BriefingKey(s.username)
	marker, ok, err := s.markers.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read briefing marker: %w", err)
	}
	if ok && marker == today {
		return nil
	}

	if next, count := nextUpcoming(events, now); count > 0 {
		s.sink.Notify(ctx, s.username, notification.Notification{
			Title: s.messages.localize(keyBriefingTitle, map[string]any{"Username": s.username}),
			Body: s.messages.localizePlural(keyBriefingBody, map[string]any{
				"Count": count,
				"Title": next.Title,
				"Time":  next.StartTime.In(s.options.Location).Format(timeLayout),
			}, count),
			Icon: s.options.Icon,
			Tag:  BriefingTag,
		})
		log.WithField("user", s.username).Infof("daily briefing sent with %d upcoming events", count)
	}

	if err := s.markers.Set(ctx, key, today); err != nil {
		return fmt.Errorf("failed to write briefing marker: %w", err)
	}
	return nil
}

// nextUpcoming returns the earliest event starting after now and the number of such events.
func nextUpcoming(events []calendar.Event, now time.Time) (calendar.Event, int) {
	var next calendar.Event
	count := 0
	for _, e := range events {
		if !e.StartTime.After(now) {
			continue
		}
		if count == 0 || e.StartTime.Before(next.StartTime) {
			next = e
		}
		count++
	}
	return next, count
}
