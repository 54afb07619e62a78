package calendar

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportICS(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	t.Run("events with and without reminders", func(t *testing.T) {
		// given
		events := []Event{
			{ID: "a", Title: "Exam", StartTime: start, EndTime: start.Add(2 * time.Hour), ReminderMinutes: IntPtr(1440), IsMajorEvent: true, Location: "Hall B"},
			{ID: "b", Title: "Walk", StartTime: start, EndTime: start.Add(time.Hour)},
		}

		// when
		data, err := ExportICS(events, now)

		// then
		require.NoError(t, err)
		cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
		require.NoError(t, err)

		exported := cal.Events()
		require.Len(t, exported, 2)

		uid, err := exported[0].Props.Text(ical.PropUID)
		require.NoError(t, err)
		assert.Equal(t, "a", uid)
		summary, err := exported[0].Props.Text(ical.PropSummary)
		require.NoError(t, err)
		assert.Equal(t, "Exam", summary)
		dtStart, err := exported[0].DateTimeStart(time.UTC)
		require.NoError(t, err)
		assert.True(t, start.Equal(dtStart))

		require.Len(t, exported[0].Children, 1)
		alarm := exported[0].Children[0]
		assert.Equal(t, ical.CompAlarm, alarm.Name)
		assert.Equal(t, "-PT1440M", alarm.Props.Get(ical.PropTrigger).Value)

		assert.Empty(t, exported[1].Children)
	})

	t.Run("empty collection has nothing to export", func(t *testing.T) {
		// when
		data, err := ExportICS([]Event{}, now)

		// then
		assert.ErrorIs(t, err, ErrNothingToExport)
		assert.Nil(t, data)
	})
}
