package health

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/willie68/GoBackupStore/internal/config"
)

// Msg the response of the readiness endpoint
type Msg struct {
	Service   string    `json:"service"`
	Healthy   bool      `json:"healthy"`
	Messages  []string  `json:"messages,omitempty"`
	LastCheck time.Time `json:"lastCheck"`
}

// Handler serving the liveness and readiness endpoints
type Handler struct {
	health *SHealth
}

// NewHealthHandler creates the handler on top of the health system
func NewHealthHandler(h *SHealth) *Handler {
	return &Handler{health: h}
}

// Routes returning the health routes
func (h *Handler) Routes() (string, *chi.Mux) {
	router := chi.NewRouter()
	router.Get("/livez", h.GetLiveness)
	router.Get("/readyz", h.GetReadiness)
	return "/", router
}

// GetLiveness the process is up
func (h *Handler) GetLiveness(response http.ResponseWriter, request *http.Request) {
	render.Status(request, http.StatusOK)
	render.JSON(response, request, Msg{
		Service: config.Servicename,
		Healthy: true,
	})
}

// GetReadiness all registered checks are fine
func (h *Handler) GetReadiness(response http.ResponseWriter, request *http.Request) {
	ready, msgs, last := h.health.Ready()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	render.Status(request, status)
	render.JSON(response, request, Msg{
		Service:   config.Servicename,
		Healthy:   ready,
		Messages:  msgs,
		LastCheck: last,
	})
}
