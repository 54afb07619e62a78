// Package storage holds the key-value persistence used for a profile's data: the event
// collection, the daily-briefing marker and the current-session marker.
package storage

import "context"

const CurrentUserKey = "ischedule-current-user"

// Store is a string key-value store. Get reports whether the key exists.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}

func EventsKey(username string) string {
	return "ischedule-events-" + username
}

func BriefingKey(username string) string {
	return "lastDailyBriefingDate-" + username
}
