package notification

import (
	"encoding/json"
	"net/http"

	"github.com/ischedule/ischedule/internal/rest"
	"github.com/ischedule/ischedule/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	center *Center
}

type InboxDTO struct {
	Permission    Permission     `json:"permission"`
	Notifications []Notification `json:"notifications"`
}

type PermissionDTO struct {
	State string `json:"state"`
}

func NewHandler(center *Center) *Handler {
	return &Handler{center: center}
}

// GetNotifications godoc
// @Summary Drain pending notifications
// @Description Returns the notifications waiting for the session user and removes them
// @Tags Notifications
// @Produce json
// @Success 200 {object} InboxDTO
// @Router /api/notifications [get]
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	username, err := user.CurrentUsername(r.Context())
	if err != nil {
		log.Errorf("failed to get current user: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rest.WriteJSON(w, http.StatusOK, InboxDTO{
		Permission:    h.center.Permission(username),
		Notifications: h.center.Drain(username),
	})
}

// SetPermission godoc
// @Summary Set notification permission
// @Tags Notifications
// @Accept json
// @Produce json
// @Param permission body PermissionDTO true "default, granted or denied"
// @Success 200 {object} PermissionDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid permission state"
// @Router /api/notifications/permission [put]
func (h *Handler) SetPermission(w http.ResponseWriter, r *http.Request) {
	username, err := user.CurrentUsername(r.Context())
	if err != nil {
		log.Errorf("failed to get current user: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var dto PermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	permission, err := ParsePermission(dto.State)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid permission state", "state must be default, granted or denied")
		return
	}

	h.center.SetPermission(username, permission)
	rest.WriteJSON(w, http.StatusOK, PermissionDTO{State: string(permission)})
}
