package session

import (
	"net/http"

	"github.com/ischedule/ischedule/internal/rest"
	"github.com/ischedule/ischedule/pkg/user"
	log "github.com/sirupsen/logrus"
)

// RequireSession puts the active profile on the request context and rejects requests
// made without one.
func (m *Manager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := m.Current()
		if !ok {
			log.Debugf("rejecting %s %s without session", r.Method, r.URL.Path)
			rest.WriteError(w, http.StatusUnauthorized, "No active session", "")
			return
		}
		next.ServeHTTP(w, r.WithContext(user.WithUser(r.Context(), u)))
	})
}
