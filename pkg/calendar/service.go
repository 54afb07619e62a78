package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ischedule/ischedule/pkg/user"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotLoaded     = errors.New("events not loaded for user")
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
)

// Service keeps each open user's collection in memory, in insertion order. A user's
// collection can only be written after it was loaded with Open, so an empty in-memory
// state never overwrites what is persisted.
type Service struct {
	repo Repository

	mu    sync.Mutex
	books map[string][]Event
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		books: make(map[string][]Event),
	}
}

// Open loads the user's collection. Malformed persisted data is logged and replaced by an
// empty collection.
func (s *Service) Open(ctx context.Context, username string) error {
	events, err := s.repo.Load(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrMalformedData) {
			return fmt.Errorf("failed to load events: %w", err)
		}
		log.Errorf("failed to parse events of %s, starting empty: %v", username, err)
		events = nil
	}
	if events == nil {
		events = []Event{}
	}

	s.mu.Lock()
	s.books[username] = events
	s.mu.Unlock()
	log.Debugf("loaded %d events for %s", len(events), username)
	return nil
}

// Close forgets the in-memory collection. Nothing is written.
func (s *Service) Close(username string) {
	s.mu.Lock()
	delete(s.books, username)
	s.mu.Unlock()
}

// Snapshot returns a copy of the user's collection, and false when it is not loaded.
func (s *Service) Snapshot(username string) ([]Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, ok := s.books[username]
	if !ok {
		return nil, false
	}
	return cloneEvents(events), true
}

func (s *Service) Events(ctx context.Context) ([]Event, error) {
	username, err := user.CurrentUsername(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	events, ok := s.Snapshot(username)
	if !ok {
		return nil, ErrNotLoaded
	}
	return events, nil
}

func (s *Service) AddEvent(ctx context.Context, event Event) (Event, error) {
	event.ID = uuid.NewString()
	if event.Color == "" {
		event.Color = DefaultColor
	}
	event, err := prepare(event)
	if err != nil {
		return Event{}, err
	}

	err = s.mutate(ctx, func(events []Event) ([]Event, error) {
		return append(events, event), nil
	})
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

// AddGenerated appends AI generated drafts. Every draft gets a fresh id, the default colour
// and is not major, whatever it carried before.
func (s *Service) AddGenerated(ctx context.Context, drafts []Event) ([]Event, error) {
	added := make([]Event, 0, len(drafts))
	for _, draft := range drafts {
		draft.ID = uuid.NewString()
		draft.Color = DefaultColor
		draft.IsMajorEvent = false
		event, err := prepare(draft)
		if err != nil {
			return nil, err
		}
		added = append(added, event)
	}

	err := s.mutate(ctx, func(events []Event) ([]Event, error) {
		return append(events, added...), nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (s *Service) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	event, err := prepare(event)
	if err != nil {
		return Event{}, err
	}

	var updated Event
	err = s.mutate(ctx, func(events []Event) ([]Event, error) {
		for i, existing := range events {
			if existing.ID != event.ID {
				continue
			}
			if event.Color == "" {
				event.Color = existing.Color
			}
			events[i] = event
			updated = event
			return events, nil
		}
		return nil, ErrEventNotFound
	})
	if err != nil {
		return Event{}, err
	}
	return updated, nil
}

func (s *Service) DeleteEvent(ctx context.Context, eventId string) error {
	return s.mutate(ctx, func(events []Event) ([]Event, error) {
		for i, existing := range events {
			if existing.ID == eventId {
				return append(events[:i], events[i+1:]...), nil
			}
		}
		return nil, ErrEventNotFound
	})
}

// mutate applies fn to a copy of the current user's collection, persists the result and
// only then makes it the in-memory state.
func (s *Service) mutate(ctx context.Context, fn func(events []Event) ([]Event, error)) error {
	username, err := user.CurrentUsername(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.books[username]
	if !ok {
		return ErrNotLoaded
	}

	next, err := fn(cloneEvents(current))
	if err != nil {
		return err
	}

	if err := s.repo.Save(ctx, username, next); err != nil {
		return fmt.Errorf("failed to save events: %w", err)
	}
	s.books[username] = next
	return nil
}

func prepare(event Event) (Event, error) {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return Event{}, fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if event.StartTime.IsZero() || event.EndTime.IsZero() {
		return Event{}, fmt.Errorf("%w: start and end time are required", ErrInvalidEvent)
	}
	if event.ReminderMinutes != nil && *event.ReminderMinutes < 0 {
		return Event{}, fmt.Errorf("%w: reminder minutes must not be negative", ErrInvalidEvent)
	}
	event.StartTime, event.EndTime = NormalizeTimes(event.StartTime, event.EndTime)
	if event.EndTime.Before(event.StartTime) {
		return Event{}, fmt.Errorf("%w: end time is more than a day before start time", ErrInvalidEvent)
	}
	return event, nil
}

func cloneEvents(events []Event) []Event {
	cloned := make([]Event, len(events))
	for i, e := range events {
		if e.ReminderMinutes != nil {
			e.ReminderMinutes = IntPtr(*e.ReminderMinutes)
		}
		cloned[i] = e
	}
	return cloned
}
