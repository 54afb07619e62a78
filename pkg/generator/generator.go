// Package generator turns a free-text plan into calendar events for one day.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ischedule/ischedule/pkg/calendar"
)

var ErrGenerationFailed = errors.New("event generation failed")

type Generator interface {
	// Generate returns drafts on targetDate. On failure it returns ErrGenerationFailed and no drafts.
	Generate(ctx context.Context, prompt string, targetDate time.Time) ([]calendar.Event, error)
}

type generatedItem struct {
	Title       string `json:"title"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

const clockLayout = "15:04"

// parseItems converts a JSON array of HH:MM items into events on the day of targetDate,
// in loc. An end before the start moves to the next day.
func parseItems(raw string, targetDate time.Time, loc *time.Location) ([]calendar.Event, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []calendar.Event{}, nil
	}

	var items []generatedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}

	day := targetDate.In(loc)
	events := make([]calendar.Event, 0, len(items))
	for i, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			return nil, fmt.Errorf("item %d has no title", i)
		}
		start, err := onDay(day, item.StartTime, loc)
		if err != nil {
			return nil, fmt.Errorf("item %d start time: %w", i, err)
		}
		end, err := onDay(day, item.EndTime, loc)
		if err != nil {
			return nil, fmt.Errorf("item %d end time: %w", i, err)
		}
		start, end = calendar.NormalizeTimes(start, end)

		events = append(events, calendar.Event{
			Title:       title,
			Description: strings.TrimSpace(item.Description),
			Location:    strings.TrimSpace(item.Location),
			StartTime:   start,
			EndTime:     end,
		})
	}
	return events, nil
}

func onDay(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	parsed, err := time.Parse(clockLayout, strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}

// Disabled is used when no model is configured. Every call fails.
type Disabled struct {
	Reason string
}

func (d Disabled) Generate(context.Context, string, time.Time) ([]calendar.Event, error) {
	return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, d.Reason)
}
