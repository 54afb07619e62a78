package urgency

import (
	"testing"
	"time"

	"github.com/ischedule/ischedule/pkg/calendar"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func eventStartingIn(d time.Duration) calendar.Event {
	return calendar.Event{
		Title:     "Event",
		StartTime: now.Add(d),
		EndTime:   now.Add(d + time.Hour),
	}
}

func TestClassify(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name     string
		event    calendar.Event
		expected Bucket
	}{
		{"ended an hour ago", eventStartingIn(-2 * time.Hour), Expired},
		{"ongoing", eventStartingIn(-30 * time.Minute), Urgent},
		{"starts in an hour", eventStartingIn(time.Hour), Urgent},
		{"starts in exactly three days", eventStartingIn(3 * day), Urgent},
		{"starts in three days and a minute", eventStartingIn(3*day + time.Minute), Warning},
		{"starts in five days", eventStartingIn(5 * day), Warning},
		{"starts in exactly six days", eventStartingIn(6 * day), Warning},
		{"starts in six days and an hour", eventStartingIn(6*day + time.Hour), Normal},
		{"starts in ten days", eventStartingIn(10 * day), Normal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.event, now))
		})
	}
}

func TestClassify_EndingExactlyNowIsNotExpired(t *testing.T) {
	event := calendar.Event{StartTime: now.Add(-time.Hour), EndTime: now}

	assert.Equal(t, Urgent, Classify(event, now))
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		buckets  []Bucket
		expected DayState
	}{
		{"no events", nil, DayEmpty},
		{"all expired", []Bucket{Expired, Expired}, DayAllPast},
		{"expired and normal", []Bucket{Expired, Normal}, DayNormal},
		{"warning beats normal", []Bucket{Normal, Warning}, DayWarning},
		{"urgent beats everything", []Bucket{Normal, Warning, Expired, Urgent}, DayUrgent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Aggregate(tt.buckets))
		})
	}
}

func TestColors(t *testing.T) {
	assert.Equal(t, "#FF3B30", Urgent.Color())
	assert.Equal(t, "#FFCC00", Warning.Color())
	assert.Equal(t, "#34C759", Normal.Color())
	assert.Equal(t, "#9CA3AF", Expired.Color())
	assert.Equal(t, "#E5E7EB", DayAllPast.Color())
	assert.Equal(t, "#FF3B30", DayUrgent.Color())
	assert.Empty(t, DayEmpty.Color())
}
