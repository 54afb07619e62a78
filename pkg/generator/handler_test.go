package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ischedule/ischedule/pkg/calendar"
	"github.com/ischedule/ischedule/pkg/storage"
	"github.com/ischedule/ischedule/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	events []calendar.Event
	err    error
	date   time.Time
}

func (s *stubGenerator) Generate(_ context.Context, _ string, targetDate time.Time) ([]calendar.Event, error) {
	s.date = targetDate
	return s.events, s.err
}

func setupGenerateHandler(t *testing.T, generator Generator) (*Handler, *calendar.Service, context.Context) {
	t.Helper()
	service := calendar.NewService(calendar.NewRepository(storage.NewMemoryStore()))
	ctx := user.WithUser(context.Background(), user.User{Username: "alice"})
	require.NoError(t, service.Open(ctx, "alice"))
	return NewHandler(generator, service, time.UTC), service, ctx
}

func generateRequest(ctx context.Context, body GenerateRequest) *http.Request {
	raw, _ := json.Marshal(body)
	return httptest.NewRequest(http.MethodPost, "/api/calendar/generate", bytes.NewBuffer(raw)).WithContext(ctx)
}

func TestHandler_Generate(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	t.Run("adds generated events", func(t *testing.T) {
		// given
		generator := &stubGenerator{events: []calendar.Event{{Title: "Walk", StartTime: start, EndTime: start.Add(time.Hour)}}}
		handler, service, ctx := setupGenerateHandler(t, generator)

		// when
		w := httptest.NewRecorder()
		handler.Generate(w, generateRequest(ctx, GenerateRequest{Prompt: "walk in the park", Date: "2025-06-02"}))

		// then
		require.Equal(t, http.StatusCreated, w.Code)
		var added []calendar.Event
		require.NoError(t, json.NewDecoder(w.Body).Decode(&added))
		require.Len(t, added, 1)
		assert.Equal(t, calendar.DefaultColor, added[0].Color)
		assert.NotEmpty(t, added[0].ID)
		assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), generator.date)

		events, err := service.Events(ctx)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("generation failure is a bad gateway and adds nothing", func(t *testing.T) {
		generator := &stubGenerator{err: ErrGenerationFailed}
		handler, service, ctx := setupGenerateHandler(t, generator)

		w := httptest.NewRecorder()
		handler.Generate(w, generateRequest(ctx, GenerateRequest{Prompt: "plan", Date: "2025-06-02"}))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		events, err := service.Events(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("missing prompt", func(t *testing.T) {
		handler, _, ctx := setupGenerateHandler(t, &stubGenerator{err: errors.New("not called")})

		w := httptest.NewRecorder()
		handler.Generate(w, generateRequest(ctx, GenerateRequest{Prompt: "  ", Date: "2025-06-02"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid date", func(t *testing.T) {
		handler, _, ctx := setupGenerateHandler(t, &stubGenerator{})

		w := httptest.NewRecorder()
		handler.Generate(w, generateRequest(ctx, GenerateRequest{Prompt: "plan", Date: "tomorrow"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
