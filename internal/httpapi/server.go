package httpapi

import (
	"net/http"
	"time"

	"sesoko-server/internal/config"
)

func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(handler),
		ReadHeaderTimeout: 5 * time.Second,
		// Chart requests wait on the remote fetch.
		WriteTimeout: cfg.FetchTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
