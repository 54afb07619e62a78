package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ischedule/ischedule/internal/rest"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	sessions *Manager
}

type SessionDTO struct {
	Username string `json:"username"`
}

func NewHandler(sessions *Manager) *Handler {
	return &Handler{sessions: sessions}
}

// Login godoc
// @Summary Sign in
// @Description Starts a session for the given profile name, ending the current one
// @Tags Session
// @Accept json
// @Produce json
// @Param session body SessionDTO true "Profile name"
// @Success 200 {object} SessionDTO
// @Failure 400 {object} rest.ErrorResponse "Empty username"
// @Router /api/session [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto SessionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	u, err := h.sessions.Login(r.Context(), dto.Username)
	if err != nil {
		if errors.Is(err, ErrEmptyUsername) {
			rest.WriteError(w, http.StatusBadRequest, "Username is required", "")
			return
		}
		log.Errorf("failed to log in: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, SessionDTO{Username: u.Username})
}

// Current godoc
// @Summary Current session
// @Tags Session
// @Produce json
// @Success 200 {object} SessionDTO
// @Failure 401 {object} rest.ErrorResponse "No active session"
// @Router /api/session [get]
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	u, ok := h.sessions.Current()
	if !ok {
		rest.WriteError(w, http.StatusUnauthorized, "No active session", "")
		return
	}
	rest.WriteJSON(w, http.StatusOK, SessionDTO{Username: u.Username})
}

// Logout godoc
// @Summary Sign out
// @Tags Session
// @Success 204
// @Failure 401 {object} rest.ErrorResponse "No active session"
// @Router /api/session [delete]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.sessions.Logout(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			rest.WriteError(w, http.StatusUnauthorized, "No active session", "")
			return
		}
		log.Errorf("failed to log out: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
