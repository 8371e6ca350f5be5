package server

import (
	"net/http"
)

// RegisterHealthEndpoints registers health check endpoints on the given mux.
// These endpoints are used by Kubernetes for readiness/liveness probes.
func RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.HandleFunc("/health", healthHandler)
	// Alternative common path for Kubernetes
	mux.HandleFunc("/healthz", healthHandler)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
