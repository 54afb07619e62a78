package overview

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ischedule/ischedule/internal/rest"
	"github.com/ischedule/ischedule/internal/utils"
	"github.com/ischedule/ischedule/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	calendar *calendar.Service
	clock    utils.Clock
	location *time.Location
}

type MonthDTO struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Days  []Day `json:"days"`
}

type DayDTO struct {
	Date    string  `json:"date"`
	Entries []Entry `json:"entries"`
}

func NewHandler(calendarService *calendar.Service, clock utils.Clock, location *time.Location) *Handler {
	return &Handler{calendar: calendarService, clock: clock, location: location}
}

// GetMonth godoc
// @Summary Month grid
// @Description 42 day cells of the month with urgency colouring. Defaults to the current month.
// @Tags Calendar
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Success 200 {object} MonthDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid year or month"
// @Router /api/calendar/month [get]
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now().In(h.location)
	year, month := now.Year(), int(now.Month())

	if value := r.URL.Query().Get("year"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid year", "year must be a positive number")
			return
		}
		year = parsed
	}
	if value := r.URL.Query().Get("month"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 || parsed > 12 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid month", "month must be between 1 and 12")
			return
		}
		month = parsed
	}

	events, ok := h.events(w, r)
	if !ok {
		return
	}
	rest.WriteJSON(w, http.StatusOK, MonthDTO{
		Year:  year,
		Month: month,
		Days:  Month(year, time.Month(month), events, now, h.location),
	})
}

// GetDay godoc
// @Summary Day agenda
// @Description Events starting on the given day, sorted by start, with urgency colouring
// @Tags Calendar
// @Produce json
// @Param date query string true "Day in YYYY-MM-DD format"
// @Success 200 {object} DayDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date"
// @Router /api/calendar/day [get]
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("date"), h.location)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "Date must be in YYYY-MM-DD format")
		return
	}

	events, ok := h.events(w, r)
	if !ok {
		return
	}
	rest.WriteJSON(w, http.StatusOK, DayDTO{
		Date:    date.Format(dateLayout),
		Entries: DayEvents(date, events, h.clock.Now()),
	})
}

func (h *Handler) events(w http.ResponseWriter, r *http.Request) ([]calendar.Event, bool) {
	events, err := h.calendar.Events(r.Context())
	if err != nil {
		if errors.Is(err, calendar.ErrNotLoaded) {
			rest.WriteError(w, http.StatusConflict, "Events are not loaded yet", "")
			return nil, false
		}
		log.Errorf("failed to read events: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return events, true
}
