package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ischedule/ischedule/internal/rest"
	"github.com/ischedule/ischedule/internal/utils"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	calendar *Service
	clock    utils.Clock
}

type EventDTO struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	Location        string    `json:"location,omitempty"`
	Color           string    `json:"color,omitempty"`
	ReminderMinutes *int      `json:"reminderMinutes,omitempty"`
	// ReminderDays is the "days before" form input; it is used when ReminderMinutes is absent.
	ReminderDays *string `json:"reminderDays,omitempty"`
	IsMajorEvent bool    `json:"isMajorEvent"`
}

func NewHandler(s *Service, clock utils.Clock) *Handler {
	return &Handler{calendar: s, clock: clock}
}

// GetEvents godoc
// @Summary List events
// @Description All events of the session user, in insertion order
// @Tags Calendar
// @Produce json
// @Success 200 {array} EventDTO
// @Router /api/calendar/event [get]
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.calendar.Events(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreateEvent godoc
// @Summary Create an event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param event body EventDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/calendar/event [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	created, err := h.calendar.AddEvent(r.Context(), dtoToEvent(eventDTO))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	log.Debugf("created event %s", created.ID)
	rest.WriteJSON(w, http.StatusCreated, eventToDTO(created))
}

// UpdateEvent godoc
// @Summary Update an event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param eventId path string true "Event id"
// @Param event body EventDTO true "Event"
// @Success 200 {object} EventDTO
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/calendar/event/{eventId} [put]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	eventDTO.ID = mux.Vars(r)["eventId"]

	updated, err := h.calendar.UpdateEvent(r.Context(), dtoToEvent(eventDTO))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventToDTO(updated))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags Calendar
// @Param eventId path string true "Event id"
// @Success 204
// @Router /api/calendar/event/{eventId} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	err := h.calendar.DeleteEvent(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportEvents godoc
// @Summary Export events as iCalendar
// @Tags Calendar
// @Produce text/calendar
// @Success 200 {string} string "iCalendar feed"
// @Success 204 "No events"
// @Router /api/calendar/export.ics [get]
func (h *Handler) ExportEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.calendar.Events(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := ExportICS(events, h.clock.Now())
	if errors.Is(err, ErrNothingToExport) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		log.Errorf("failed to export events: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ischedule.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Errorf("failed to write export: %v", err)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidEvent):
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, ErrNotLoaded):
		rest.WriteError(w, http.StatusConflict, "Events are not loaded yet", "")
	default:
		log.Errorf("calendar request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		Location:        e.Location,
		Color:           e.Color,
		ReminderMinutes: e.ReminderMinutes,
		IsMajorEvent:    e.IsMajorEvent,
	}
}

func dtoToEvent(dto EventDTO) Event {
	reminder := dto.ReminderMinutes
	if reminder == nil && dto.ReminderDays != nil {
		reminder = IntPtr(ReminderMinutesFromDays(*dto.ReminderDays))
	}
	return Event{
		ID:              dto.ID,
		Title:           dto.Title,
		Description:     dto.Description,
		StartTime:       dto.StartTime,
		EndTime:         dto.EndTime,
		Location:        dto.Location,
		Color:           dto.Color,
		ReminderMinutes: reminder,
		IsMajorEvent:    dto.IsMajorEvent,
	}
}
