// Package overview lays events out on a month grid and a day agenda, coloured by urgency.
package overview

import (
	"sort"
	"time"

	"github.com/ischedule/ischedule/pkg/calendar"
	"github.com/ischedule/ischedule/pkg/urgency"
)

const (
	gridCells  = 42
	dateLayout = "2006-01-02"
)

type Entry struct {
	Event  calendar.Event `json:"event"`
	Bucket urgency.Bucket `json:"bucket"`
	Color  string         `json:"color"`
}

type Day struct {
	Date    string           `json:"date"`
	InMonth bool             `json:"inMonth"`
	Entries []Entry          `json:"entries"`
	State   urgency.DayState `json:"state"`
	Color   string           `json:"color,omitempty"`
}

// Month builds the 42 cell grid of the month, starting on the Sunday on or before the 1st.
// Cells outside the month are always empty.
func Month(year int, month time.Month, events []calendar.Event, now time.Time, loc *time.Location) []Day {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	gridStart := first.AddDate(0, 0, -int(first.Weekday()))

	byDay := groupByDay(events, loc)

	days := make([]Day, 0, gridCells)
	for i := 0; i < gridCells; i++ {
		date := gridStart.AddDate(0, 0, i)
		key := date.Format(dateLayout)
		inMonth := date.Month() == month

		var entries []Entry
		if inMonth {
			entries = classifyAll(byDay[key], now)
		}
		state := aggregate(entries)
		days = append(days, Day{
			Date:    key,
			InMonth: inMonth,
			Entries: entries,
			State:   state,
			Color:   state.Color(),
		})
	}
	return days
}

// DayEvents returns the events starting on the local day of date, sorted by start.
func DayEvents(date time.Time, events []calendar.Event, now time.Time) []Entry {
	key := date.Format(dateLayout)
	return classifyAll(groupByDay(events, date.Location())[key], now)
}

func groupByDay(events []calendar.Event, loc *time.Location) map[string][]calendar.Event {
	byDay := make(map[string][]calendar.Event)
	for _, e := range events {
		key := e.StartTime.In(loc).Format(dateLayout)
		byDay[key] = append(byDay[key], e)
	}
	return byDay
}

func classifyAll(events []calendar.Event, now time.Time) []Entry {
	sorted := make([]calendar.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	entries := make([]Entry, 0, len(sorted))
	for _, e := range sorted {
		bucket := urgency.Classify(e, now)
		entries = append(entries, Entry{Event: e, Bucket: bucket, Color: bucket.Color()})
	}
	return entries
}

func aggregate(entries []Entry) urgency.DayState {
	buckets := make([]urgency.Bucket, 0, len(entries))
	for _, e := range entries {
		buckets = append(buckets, e.Bucket)
	}
	return urgency.Aggregate(buckets)
}
