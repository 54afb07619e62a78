package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ischedule/ischedule/pkg/storage"
	log "github.com/sirupsen/logrus"
)

var ErrMalformedData = errors.New("malformed event data")

// Repository persists a user's whole event collection at once.
type Repository interface {
	Load(ctx context.Context, username string) ([]Event, error)
	Save(ctx context.Context, username string, events []Event) error
}

type RepositoryImpl struct {
	store storage.Store
}

func NewRepository(store storage.Store) *RepositoryImpl {
	return &RepositoryImpl{store: store}
}

// Load returns the persisted collection, or nil when the user has none yet.
func (r *RepositoryImpl) Load(ctx context.Context, username string) ([]Event, error) {
	raw, ok, err := r.store.Get(ctx, storage.EventsKey(username))
	if err != nil {
		return nil, fmt.Errorf("could not read events: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var events []Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	return events, nil
}

func (r *RepositoryImpl) Save(ctx context.Context, username string, events []Event) error {
	if events == nil {
		events = []Event{}
	}
	raw, err := json.Marshal(events)
	if err != nil {
		err := fmt.Errorf("could not encode events: %w", err)
		log.Error(err)
		return err
	}
	if err := r.store.Set(ctx, storage.EventsKey(username), string(raw)); err != nil {
		return fmt.Errorf("could not store events: %w", err)
	}
	return nil
}
