package calendar

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultColor = "bg-ios-blue"

	minutesPerDay = 24 * 60
)

type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	Location        string    `json:"location,omitempty"`
	Color           string    `json:"color,omitempty"`
	ReminderMinutes *int      `json:"reminderMinutes,omitempty"`
	IsMajorEvent    bool      `json:"isMajorEvent,omitempty"`
}

func (e Event) HasReminder() bool {
	return e.ReminderMinutes != nil
}

// TriggerTime is the instant the event's reminder becomes due. ok is false without a reminder.
func (e Event) TriggerTime() (trigger time.Time, ok bool) {
	if e.ReminderMinutes == nil {
		return time.Time{}, false
	}
	return e.StartTime.Add(-time.Duration(*e.ReminderMinutes) * time.Minute), true
}

// NormalizeTimes rolls an end that precedes the start over to the next day,
// the way an overnight entry such as 23:00-01:00 is meant.
func NormalizeTimes(start, end time.Time) (time.Time, time.Time) {
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// ReminderMinutesFromDays converts a "days before" input into reminder minutes.
// Empty, unparsable and negative input counts as 0 days; fractional days round half away from zero.
func ReminderMinutesFromDays(input string) int {
	days, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || days < 0 || math.IsNaN(days) || math.IsInf(days, 0) {
		return 0
	}
	return int(math.Round(days)) * minutesPerDay
}

// ReminderDays is the number of whole days a reminder lead time spans, rounded up.
func ReminderDays(minutes int) int {
	return int(math.Ceil(float64(minutes) / minutesPerDay))
}

func IntPtr(v int) *int {
	return &v
}
