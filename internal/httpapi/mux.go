package httpapi

import (
	"net/http"
)

// NewMux returns a mux with /healthz registered. mqtt may be nil.
func NewMux(mqtt ConnectionChecker) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, mqtt)
	return mux
}
