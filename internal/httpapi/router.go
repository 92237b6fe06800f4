// Package httpapi exposes the estimation session over a small JSON API.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"StakeScope/internal/engine"
	"StakeScope/internal/metrics"
	"StakeScope/internal/session"
)

// Config wires the router to the engine.
type Config struct {
	Engine  *engine.Engine
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

type lookupRequest struct {
	Address string `json:"address"`
}

type lookupResponse struct {
	Generation uint64 `json:"generation"`
}

type boostRequest struct {
	Multiplier int `json:"multiplier"`
}

type handlers struct {
	engine *engine.Engine
	log    *slog.Logger
}

// New builds the HTTP handler.
func New(cfg Config) http.Handler {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	h := &handlers{engine: cfg.Engine, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/estimate", h.estimate)
		r.Post("/lookup", h.lookup)
		r.Post("/boost", h.boost)
		r.Post("/toggles/calculations", h.toggleCalculations)
		r.Post("/toggles/guide", h.toggleGuide)
	})
	return r
}

func (h *handlers) estimate(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r)
}

func (h *handlers) lookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}
	gen, err := h.engine.Submit(r.Context(), req.Address)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, lookupResponse{Generation: gen})
}

func (h *handlers) boost(w http.ResponseWriter, r *http.Request) {
	var req boostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}
	if err := h.engine.SetBoost(r.Context(), req.Multiplier); err != nil {
		h.fail(w, err)
		return
	}
	h.respondView(w, r)
}

func (h *handlers) toggleCalculations(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ToggleCalculations(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	h.respondView(w, r)
}

func (h *handlers) toggleGuide(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ToggleGuide(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	h.respondView(w, r)
}

func (h *handlers) respondView(w http.ResponseWriter, r *http.Request) {
	v, err := h.engine.Snapshot(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handlers) fail(w http.ResponseWriter, err error) {
	var apiErr apiError
	switch {
	case errors.As(err, &apiErr):
		writeError(w, apiErr.Status, apiErr.Message)
	case errors.Is(err, session.ErrEmptyIdentity):
		writeError(w, http.StatusBadRequest, session.MsgEmptyIdentity)
	case errors.Is(err, session.ErrInvalidBoost):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("request failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	}
}
