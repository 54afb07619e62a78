// Package session tracks the single signed in profile of the running instance.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ischedule/ischedule/internal/event_bus"
	"github.com/ischedule/ischedule/pkg/storage"
	"github.com/ischedule/ischedule/pkg/user"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEmptyUsername = errors.New("username must not be empty")
	ErrNoSession     = errors.New("no active session")
)

// Collections loads and drops a user's event collection.
type Collections interface {
	Open(ctx context.Context, username string) error
	Close(username string)
}

type Manager struct {
	store       storage.Store
	collections Collections
	bus         *event_bus.EventBus

	mu      sync.Mutex
	current string
}

func NewManager(store storage.Store, collections Collections, bus *event_bus.EventBus) *Manager {
	return &Manager{store: store, collections: collections, bus: bus}
}

// Login makes username the active profile, ending the previous session first.
func (m *Manager) Login(ctx context.Context, username string) (user.User, error) {
	username = user.Normalize(username)
	if username == "" {
		return user.User{}, ErrEmptyUsername
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != "" {
		if err := m.endLocked(ctx); err != nil {
			return user.User{}, err
		}
	}

	if err := m.store.Set(ctx, storage.CurrentUserKey, username); err != nil {
		return user.User{}, fmt.Errorf("failed to store current user: %w", err)
	}
	if err := m.collections.Open(ctx, username); err != nil {
		if removeErr := m.store.Remove(ctx, storage.CurrentUserKey); removeErr != nil {
			log.Errorf("failed to remove current user marker: %v", removeErr)
		}
		return user.User{}, fmt.Errorf("failed to open events of %s: %w", username, err)
	}
	m.current = username

	m.publish(ctx, event_bus.SessionStartedType, event_bus.SessionStarted{Username: username})
	log.Infof("session started for %s", username)
	return user.User{Username: username}, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == "" {
		return ErrNoSession
	}
	return m.endLocked(ctx)
}

func (m *Manager) endLocked(ctx context.Context) error {
	username := m.current
	if err := m.store.Remove(ctx, storage.CurrentUserKey); err != nil {
		return fmt.Errorf("failed to remove current user: %w", err)
	}
	m.collections.Close(username)
	m.current = ""

	m.publish(ctx, event_bus.SessionEndedType, event_bus.SessionEnded{Username: username})
	log.Infof("session ended for %s", username)
	return nil
}

func (m *Manager) Current() (user.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == "" {
		return user.User{}, false
	}
	return user.User{Username: m.current}, true
}

// Restore signs the stored profile in again after a restart. Without a stored profile it
// does nothing.
func (m *Manager) Restore(ctx context.Context) error {
	username, ok, err := m.store.Get(ctx, storage.CurrentUserKey)
	if err != nil {
		return fmt.Errorf("failed to read current user: %w", err)
	}
	if !ok || user.Normalize(username) == "" {
		log.Debug("no session to restore")
		return nil
	}
	_, err = m.Login(ctx, username)
	return err
}

func (m *Manager) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if err := m.bus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Errorf("failed to publish %s: %v", eventType, err)
	}
}
