package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"github.com/ReqCrypto/sol-meme-scanner/internal/sink"
	"github.com/ReqCrypto/sol-meme-scanner/internal/snapshot"
	"github.com/ReqCrypto/sol-meme-scanner/pkg/httputil"
)

const defaultTopLimit = 10

type Handler struct {
	Log   logger.Logger
	Store snapshot.Store
	Sink  sink.Sink
}

func NewHandler(log logger.Logger, store snapshot.Store, s sink.Sink) *Handler {
	if store == nil {
		panic("snapshot store cannot be nil")
	}
	return &Handler{Log: log, Store: store, Sink: s}
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	if err := httputil.JSON(w, http.StatusOK, map[string]any{}, nil); err != nil {
		h.Log.Errorf("Healthz handler error: %s", err.Error())
	}
}

// Readiness checks the external collaborators the scanner depends on.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	unhealthy := map[string]string{}
	if err := h.Store.Health(ctx); err != nil {
		unhealthy["snapshot_store"] = err.Error()
	}
	if h.Sink != nil {
		if err := h.Sink.Health(ctx); err != nil {
			unhealthy["sink"] = err.Error()
		}
	}

	if len(unhealthy) > 0 {
		err := httputil.Error(w, r, http.StatusServiceUnavailable, "dependencies_unhealthy",
			"dependencies check failed", unhealthy)
		if err != nil {
			h.Log.Errorf("Readiness handler error: %s", err.Error())
		}
		return
	}

	if err := httputil.JSON(w, http.StatusOK, map[string]string{"dependencies": "healthy"}, nil); err != nil {
		h.Log.Errorf("Readiness handler error: %s", err.Error())
	}
}

// Top returns the ranked candidates of the most recent completed cycle.
// ?limit=N trims the list; the cycle itself is never re-run here.
func (h *Handler) Top(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			if err = httputil.Error(w, r, http.StatusBadRequest, "bad_request", "limit must be a positive integer", nil); err != nil {
				h.Log.Errorf("Top handler error: %s", err.Error())
			}
			return
		}
		limit = v
	}

	res, err := h.Store.Latest(r.Context())
	if err != nil {
		h.Log.Errorf("Failed to read latest cycle: %v", err)
		if err = httputil.Error(w, r, http.StatusInternalServerError, "internal", "failed to read latest cycle", nil); err != nil {
			h.Log.Errorf("Top handler error: %s", err.Error())
		}
		return
	}

	cands := res.Candidates
	if len(cands) > limit {
		cands = cands[:limit]
	}

	body := map[string]any{
		"generated_at": res.GeneratedAt,
		"count":        len(cands),
		"candidates":   cands,
	}
	if err = httputil.JSON(w, http.StatusOK, body, nil); err != nil {
		h.Log.Errorf("Top handler error: %s", err.Error())
	}
}
