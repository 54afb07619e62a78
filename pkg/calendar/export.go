package calendar

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
)

const icsProductId = "-//iSchedule//Calendar Export//EN"

// ErrNothingToExport is returned for an empty collection; iCalendar has no empty VCALENDAR.
var ErrNothingToExport = errors.New("no events to export")

// ExportICS renders events as an iCalendar feed. Events with a reminder carry a DISPLAY alarm
// firing ReminderMinutes before the start.
func ExportICS(events []Event, now time.Time) ([]byte, error) {
	if len(events) == 0 {
		return nil, ErrNothingToExport
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProductId)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")

	for _, e := range events {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, e.ID)
		event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, e.StartTime.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, e.EndTime.UTC())
		event.Props.SetText(ical.PropSummary, e.Title)
		if e.Location != "" {
			event.Props.SetText(ical.PropLocation, e.Location)
		}
		if e.Description != "" {
			event.Props.SetText(ical.PropDescription, e.Description)
		}
		if e.IsMajorEvent {
			event.Props.SetText(ical.PropPriority, "1")
		}
		if e.ReminderMinutes != nil {
			event.Children = append(event.Children, newAlarm(e.Title, *e.ReminderMinutes))
		}
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func newAlarm(description string, minutes int) *ical.Component {
	alarm := ical.NewComponent(ical.CompAlarm)
	alarm.Props.SetText(ical.PropAction, "DISPLAY")
	alarm.Props.SetText(ical.PropDescription, description)

	// Set the value directly, SetText would add VALUE=TEXT.
	trigger := ical.NewProp(ical.PropTrigger)
	if minutes == 0 {
		trigger.Value = "PT0M"
	} else {
		trigger.Value = fmt.Sprintf("-PT%dM", minutes)
	}
	alarm.Props.Set(trigger)
	return alarm
}
