package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ischedule/ischedule/internal/event_bus"
	"github.com/ischedule/ischedule/pkg/calendar"
	"github.com/ischedule/ischedule/pkg/storage"
	"github.com/ischedule/ischedule/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionEvents struct {
	started []string
	ended   []string
}

func setupManager(t *testing.T) (*Manager, *storage.MemoryStore, *calendar.Service, *sessionEvents) {
	t.Helper()
	store := storage.NewMemoryStore()
	calendarService := calendar.NewService(calendar.NewRepository(store))
	bus := event_bus.NewEventBus()

	recorded := &sessionEvents{}
	event_bus.SubscribeTyped(bus, event_bus.SessionStartedType, func(e event_bus.EventT[event_bus.SessionStarted]) error {
		recorded.started = append(recorded.started, e.Data.Username)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.SessionEndedType, func(e event_bus.EventT[event_bus.SessionEnded]) error {
		recorded.ended = append(recorded.ended, e.Data.Username)
		return nil
	})
	return NewManager(store, calendarService, bus), store, calendarService, recorded
}

type failingCollections struct{}

func (failingCollections) Open(context.Context, string) error {
	return errors.New("store down")
}

func (failingCollections) Close(string) {}

func TestManager_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("starts a session", func(t *testing.T) {
		// given
		manager, store, calendarService, recorded := setupManager(t)

		// when
		u, err := manager.Login(ctx, "  alice ")

		// then
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
		current, ok := manager.Current()
		assert.True(t, ok)
		assert.Equal(t, "alice", current.Username)

		marker, ok, err := store.Get(ctx, storage.CurrentUserKey)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "alice", marker)

		_, loaded := calendarService.Snapshot("alice")
		assert.True(t, loaded)
		assert.Equal(t, []string{"alice"}, recorded.started)
	})

	t.Run("empty username", func(t *testing.T) {
		manager, _, _, recorded := setupManager(t)

		_, err := manager.Login(ctx, "   ")

		assert.ErrorIs(t, err, ErrEmptyUsername)
		_, ok := manager.Current()
		assert.False(t, ok)
		assert.Empty(t, recorded.started)
	})

	t.Run("switching user ends the previous session", func(t *testing.T) {
		manager, _, calendarService, recorded := setupManager(t)
		_, err := manager.Login(ctx, "alice")
		require.NoError(t, err)

		_, err = manager.Login(ctx, "bob")

		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, recorded.started)
		assert.Equal(t, []string{"alice"}, recorded.ended)
		_, aliceLoaded := calendarService.Snapshot("alice")
		assert.False(t, aliceLoaded)
	})

	t.Run("failed load leaves no session", func(t *testing.T) {
		store := storage.NewMemoryStore()
		manager := NewManager(store, failingCollections{}, event_bus.NewEventBus())

		_, err := manager.Login(ctx, "alice")

		assert.Error(t, err)
		_, ok := manager.Current()
		assert.False(t, ok)
		_, present, _ := store.Get(ctx, storage.CurrentUserKey)
		assert.False(t, present)
	})
}

func TestManager_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("ends the session and keeps the data", func(t *testing.T) {
		// given
		manager, store, calendarService, recorded := setupManager(t)
		_, err := manager.Login(ctx, "alice")
		require.NoError(t, err)
		_, err = calendarService.AddEvent(user.WithUser(ctx, user.User{Username: "alice"}), calendar.Event{
			Title:     "Kept",
			StartTime: mustTime("2025-06-01T09:00:00Z"),
			EndTime:   mustTime("2025-06-01T10:00:00Z"),
		})
		require.NoError(t, err)

		// when
		err = manager.Logout(ctx)

		// then
		require.NoError(t, err)
		_, ok := manager.Current()
		assert.False(t, ok)
		_, present, _ := store.Get(ctx, storage.CurrentUserKey)
		assert.False(t, present)
		_, present, _ = store.Get(ctx, storage.EventsKey("alice"))
		assert.True(t, present)
		assert.Equal(t, []string{"alice"}, recorded.ended)
	})

	t.Run("without session", func(t *testing.T) {
		manager, _, _, _ := setupManager(t)

		assert.ErrorIs(t, manager.Logout(ctx), ErrNoSession)
	})
}

func TestManager_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("restores the stored profile", func(t *testing.T) {
		// given
		manager, store, _, recorded := setupManager(t)
		require.NoError(t, store.Set(ctx, storage.CurrentUserKey, "alice"))

		// when
		err := manager.Restore(ctx)

		// then
		require.NoError(t, err)
		current, ok := manager.Current()
		assert.True(t, ok)
		assert.Equal(t, "alice", current.Username)
		assert.Equal(t, []string{"alice"}, recorded.started)
	})

	t.Run("nothing stored", func(t *testing.T) {
		manager, _, _, recorded := setupManager(t)

		require.NoError(t, manager.Restore(ctx))

		_, ok := manager.Current()
		assert.False(t, ok)
		assert.Empty(t, recorded.started)
	})
}

func TestRequireSession(t *testing.T) {
	manager, _, _, _ := setupManager(t)
	var seen string
	protected := manager.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = user.CurrentUsername(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("rejected without session", func(t *testing.T) {
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/calendar/event", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("session user on the context", func(t *testing.T) {
		_, err := manager.Login(context.Background(), "alice")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/calendar/event", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", seen)
	})
}

func TestHandler(t *testing.T) {
	manager, _, _, _ := setupManager(t)
	handler := NewHandler(manager)

	t.Run("current without session", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Current(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("login with empty name", func(t *testing.T) {
		body, _ := json.Marshal(SessionDTO{Username: ""})
		w := httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewBuffer(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login, current and logout", func(t *testing.T) {
		body, _ := json.Marshal(SessionDTO{Username: "alice"})
		w := httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewBuffer(body)))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		handler.Current(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var current SessionDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&current))
		assert.Equal(t, "alice", current.Username)

		w = httptest.NewRecorder()
		handler.Logout(w, httptest.NewRequest(http.MethodDelete, "/api/session", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.NewRecorder()
		handler.Logout(w, httptest.NewRequest(http.MethodDelete, "/api/session", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func mustTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}
