// Package urgency classifies events by how soon they start and derives the colour a
// calendar day is painted with.
package urgency

import (
	"math"
	"time"

	"github.com/ischedule/ischedule/pkg/calendar"
)

type Bucket string

const (
	Expired Bucket = "expired"
	Urgent  Bucket = "urgent"
	Warning Bucket = "warning"
	Normal  Bucket = "normal"
)

type DayState string

const (
	DayEmpty   DayState = "empty"
	DayAllPast DayState = "all-past"
	DayUrgent  DayState = "urgent"
	DayWarning DayState = "warning"
	DayNormal  DayState = "normal"
)

const (
	urgentMaxDays  = 3
	warningMaxDays = 6
)

var bucketColors = map[Bucket]string{
	Expired: "#9CA3AF",
	Urgent:  "#FF3B30",
	Warning: "#FFCC00",
	Normal:  "#34C759",
}

var dayColors = map[DayState]string{
	DayEmpty:   "",
	DayAllPast: "#E5E7EB",
	DayUrgent:  bucketColors[Urgent],
	DayWarning: bucketColors[Warning],
	DayNormal:  bucketColors[Normal],
}

// Classify buckets an event relative to now. An event that has not ended yet counts its
// remaining days rounded up, so an ongoing event is urgent.
func Classify(event calendar.Event, now time.Time) Bucket {
	if event.EndTime.Before(now) {
		return Expired
	}
	days := int(math.Ceil(event.StartTime.Sub(now).Hours() / 24))
	switch {
	case days <= urgentMaxDays:
		return Urgent
	case days <= warningMaxDays:
		return Warning
	default:
		return Normal
	}
}

// Aggregate is the state of a day holding events with the given buckets.
func Aggregate(buckets []Bucket) DayState {
	if len(buckets) == 0 {
		return DayEmpty
	}
	var hasWarning, hasNormal bool
	for _, b := range buckets {
		switch b {
		case Urgent:
			return DayUrgent
		case Warning:
			hasWarning = true
		case Normal:
			hasNormal = true
		}
	}
	switch {
	case hasWarning:
		return DayWarning
	case hasNormal:
		return DayNormal
	default:
		return DayAllPast
	}
}

func (b Bucket) Color() string {
	return bucketColors[b]
}

// Color is the day highlight; empty days have none.
func (s DayState) Color() string {
	return dayColors[s]
}
