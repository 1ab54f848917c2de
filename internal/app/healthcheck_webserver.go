package app

import (
	"fmt"
	"net/http"

	"github.com/vk/nodegridgo/internal/telemetry"
)

// healthHandler answers liveness checks.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// newMux routes the health check and, when tel is set, the telemetry
// socket.io endpoint.
func (a *App) newMux(tel *telemetry.Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	if tel != nil {
		mux.Handle(telemetry.Path, tel.Handler())
	}
	return mux
}
