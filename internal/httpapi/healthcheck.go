package httpapi

import (
	"net/http"

	"sesoko-server/internal/utils"
)

// ConnectionChecker reports the state of an optional outbound connection.
type ConnectionChecker interface {
	IsConnected() bool
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	mqtt ConnectionChecker
}

func NewHealthchecker(mqtt ConnectionChecker) healthchecker {
	return &healthcheckerImpl{mqtt: mqtt}
}

// handleHealthz never touches the remote CSV source. The broker state is informational only.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	switch {
	case h.mqtt == nil:
		body["mqtt"] = "disabled"
	case h.mqtt.IsConnected():
		body["mqtt"] = "connected"
	default:
		body["mqtt"] = "disconnected"
	}
	utils.WriteJSON(w, http.StatusOK, body)
}

func registerHealthcheck(mux *http.ServeMux, mqtt ConnectionChecker) {
	healthchecker := NewHealthchecker(mqtt)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
