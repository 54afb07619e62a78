package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/ischedule/ischedule/internal/config"
	"github.com/ischedule/ischedule/pkg/calendar"
	"github.com/ischedule/ischedule/pkg/overview"
	"github.com/ischedule/ischedule/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Application {
	return config.Application{
		Host:    "http://localhost:3000",
		Storage: config.Storage{Backend: config.StorageBackendMemory},
		Notifications: config.Notifications{
			PollInterval:      time.Second,
			BriefingHour:      5,
			Timezone:          "UTC",
			Language:          "en",
			DefaultPermission: "granted",
			InboxSize:         10,
		},
	}
}

func setupRouter(t *testing.T) (*mux.Router, *Dependencies) {
	t.Helper()
	deps, err := BuildDependencies(context.Background(), storage.NewMemoryStore(), testConfig())
	require.NoError(t, err)
	r := mux.NewRouter()
	SetupMiddleware(r, deps, testConfig())
	RegisterRoutes(r, deps, testConfig())
	return r, deps
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
	return w
}

func TestRoutes_RequireSession(t *testing.T) {
	r, _ := setupRouter(t)

	for _, path := range []string{"/api/calendar/event", "/api/calendar/month", "/api/notifications"} {
		t.Run(path, func(t *testing.T) {
			w := doRequest(t, r, http.MethodGet, path, nil)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRoutes_SessionFlow(t *testing.T) {
	// given
	r, deps := setupRouter(t)
	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Minute)

	// when
	login := doRequest(t, r, http.MethodPost, "/api/session", map[string]string{"username": "alice"})
	created := doRequest(t, r, http.MethodPost, "/api/calendar/event", calendar.EventDTO{
		Title:     "Exam",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	month := doRequest(t, r, http.MethodGet, "/api/calendar/month", nil)

	// then
	require.Equal(t, http.StatusOK, login.Code)
	require.Equal(t, http.StatusCreated, created.Code)
	require.Equal(t, http.StatusOK, month.Code)
	var grid overview.MonthDTO
	require.NoError(t, json.NewDecoder(month.Body).Decode(&grid))
	assert.Len(t, grid.Days, 42)

	assert.True(t, deps.ReminderRunner.Scheduled("alice"))
	assert.Equal(t, "granted", string(deps.NotificationCenter.Permission("alice")))

	t.Run("generation without api key is a bad gateway", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/api/calendar/generate", map[string]string{"prompt": "plan", "date": "2025-06-02"})

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("logout stops the reminders", func(t *testing.T) {
		w := doRequest(t, r, http.MethodDelete, "/api/session", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.False(t, deps.ReminderRunner.Scheduled("alice"))
		assert.Equal(t, http.StatusUnauthorized, doRequest(t, r, http.MethodGet, "/api/calendar/event", nil).Code)
	})
}

func TestRoutes_CorsPreflight(t *testing.T) {
	r, _ := setupRouter(t)

	for _, path := range []string{"/api/session", "/api/calendar/event", "/api/calendar/event/some-id"} {
		t.Run(path, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()

			// when
			r.ServeHTTP(w, req)

			// then
			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
		})
	}
}

func TestRoutes_CorsHeadersOnRequests(t *testing.T) {
	r, _ := setupRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/calendar/event", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
