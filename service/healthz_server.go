// Package service hosts the HTTP sidecar endpoints exposed while hhscan runs
// in continuous mode.
package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// HealthzServer serves /healthz and /metrics for the continuous fetch loop.
type HealthzServer struct {
	log     *zap.Logger
	mu      sync.Mutex
	server  *http.Server
	stopped bool
}

func NewHealthzServer(log *zap.Logger) *HealthzServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthzServer{log: log}
}

// Start serves until the listener fails or Shutdown is called. It blocks, so
// callers run it in a goroutine. Shutdown may race with Start; a server shut
// down before serving returns immediately.
func (h *HealthzServer) Start(addr string) error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return http.ErrServerClosed
	}
	h.server = &http.Server{
		Handler: h.handler(),
		Addr:    addr,
	}
	h.mu.Unlock()
	return h.server.ListenAndServe()
}

func (h *HealthzServer) handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", h.handleHealthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	return c.Handler(router)
}

func (h *HealthzServer) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.stopped = true
	server := h.server
	h.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (h *HealthzServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.log.Debug("Received health check request", zap.String("path", r.URL.Path))
	w.Write([]byte("OK")) //nolint:errcheck
}
