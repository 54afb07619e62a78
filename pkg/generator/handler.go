package generator

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ischedule/ischedule/internal/rest"
	"github.com/ischedule/ischedule/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	generator Generator
	calendar  *calendar.Service
	location  *time.Location
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
	// Date is the target day in YYYY-MM-DD format.
	Date string `json:"date"`
}

func NewHandler(generator Generator, calendarService *calendar.Service, location *time.Location) *Handler {
	return &Handler{generator: generator, calendar: calendarService, location: location}
}

// Generate godoc
// @Summary Generate events from a prompt
// @Description Asks the AI model for a day plan and adds the resulting events
// @Tags Calendar
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Prompt and target date"
// @Success 201 {array} calendar.Event
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 502 {object} rest.ErrorResponse "Generation failed"
// @Router /api/calendar/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var request GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	prompt := strings.TrimSpace(request.Prompt)
	if prompt == "" {
		rest.WriteError(w, http.StatusBadRequest, "Prompt is required", "")
		return
	}
	targetDate, err := time.ParseInLocation("2006-01-02", request.Date, h.location)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "Date must be in YYYY-MM-DD format")
		return
	}

	drafts, err := h.generator.Generate(r.Context(), prompt, targetDate)
	if err != nil {
		log.Errorf("failed to generate events: %v", err)
		rest.WriteError(w, http.StatusBadGateway, "Could not generate a schedule, please try again", "")
		return
	}

	added, err := h.calendar.AddGenerated(r.Context(), drafts)
	if err != nil {
		switch {
		case errors.Is(err, calendar.ErrNotLoaded):
			rest.WriteError(w, http.StatusConflict, "Events are not loaded yet", "")
		case errors.Is(err, calendar.ErrInvalidEvent):
			rest.WriteError(w, http.StatusBadGateway, "Could not generate a schedule, please try again", err.Error())
		default:
			log.Errorf("failed to add generated events: %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	rest.WriteJSON(w, http.StatusCreated, added)
}
