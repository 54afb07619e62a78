package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ischedule/ischedule/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// CORS preflight, answered by the middleware
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Session
	r.HandleFunc("/api/session", deps.SessionHandler.Login).Methods("POST")
	r.HandleFunc("/api/session", deps.SessionHandler.Current).Methods("GET")
	r.HandleFunc("/api/session", deps.SessionHandler.Logout).Methods("DELETE")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(deps.SessionManager.RequireSession)

	// Calendar
	api.HandleFunc("/calendar/event", deps.CalendarHandler.GetEvents).Methods("GET")
	api.HandleFunc("/calendar/event", deps.CalendarHandler.CreateEvent).Methods("POST")
	api.HandleFunc("/calendar/event/{eventId}", deps.CalendarHandler.UpdateEvent).Methods("PUT")
	api.HandleFunc("/calendar/event/{eventId}", deps.CalendarHandler.DeleteEvent).Methods("DELETE")
	api.HandleFunc("/calendar/export.ics", deps.CalendarHandler.ExportEvents).Methods("GET")

	// Overview
	api.HandleFunc("/calendar/month", deps.OverviewHandler.GetMonth).Methods("GET")
	api.HandleFunc("/calendar/day", deps.OverviewHandler.GetDay).Queries("date", "{date}").Methods("GET")

	// AI generation
	api.HandleFunc("/calendar/generate", deps.GeneratorHandler.Generate).Methods("POST")

	// Notifications
	api.HandleFunc("/notifications", deps.NotificationHandler.GetNotifications).Methods("GET")
	api.HandleFunc("/notifications/permission", deps.NotificationHandler.SetPermission).Methods("PUT")
}
