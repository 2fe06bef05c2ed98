package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
	"github.com/rDingyFourFour/handybob-sub000/internal/metrics"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type SchemaChecker interface {
	VerifyCallOutcomeColumns(ctx context.Context) error
}

// HealthHandler reports database reachability and whether migrations are current.
type HealthHandler struct {
	DB       Pinger
	Schema   SchemaChecker
	Gatherer prometheus.Gatherer
	Timeout  time.Duration
}

func (h *HealthHandler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(h.Gatherer))
}

type healthBody struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Schema   string `json:"schema"`
	Message  string `json:"message,omitempty"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	body := healthBody{OK: true, Database: "up", Schema: "current"}
	status := http.StatusOK

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			body = healthBody{Database: "down", Schema: "unknown", Message: err.Error()}
			writeHealth(w, http.StatusServiceUnavailable, body)
			return
		}
	}
	if h.Schema != nil {
		if err := h.Schema.VerifyCallOutcomeColumns(ctx); err != nil {
			body.OK = false
			body.Schema = "error"
			if appErrors.KindOf(err) == appErrors.KindSchemaOutOfDate {
				body.Schema = "out_of_date"
			}
			body.Message = appErrors.Message(err)
			status = http.StatusServiceUnavailable
		}
	}
	writeHealth(w, status, body)
}

func writeHealth(w http.ResponseWriter, status int, body healthBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
