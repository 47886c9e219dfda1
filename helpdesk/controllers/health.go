package controllers

import (
	"context"
	"net/http"
	"time"

	"helpdesk/helpdesk/config"
	"helpdesk/helpdesk/types"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type CacheState interface {
	Connected() bool
}

type HealthController struct {
	db       Pinger
	cache    CacheState
	provider string
	cfg      config.Config
}

func NewHealthController(db Pinger, cache CacheState, provider string, cfg config.Config) *HealthController {
	return &HealthController{db: db, cache: cache, provider: provider, cfg: cfg}
}

func (h *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// Diagnostics probes the database and reports cache and provider state.
// A failed probe is reported, never returned as an error.
func (h *HealthController) Diagnostics(ctx context.Context) types.Diagnostics {
	d := types.Diagnostics{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Environment: types.EnvironmentFlags{
			HasDatabaseURL:  h.cfg.DatabaseURL != "",
			HasClaudeAPIKey: h.cfg.ClaudeAPIKey != "",
			HasOpenAIAPIKey: h.cfg.OpenAIAPIKey != "",
			Environment:     h.cfg.Environment,
		},
		Provider: h.provider,
		Archive:  h.cfg.ArchiveEnabled(),
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := h.db.Ping(pingCtx); err != nil {
		d.Database = types.ComponentStatus{Status: "failed", Error: err.Error()}
	} else {
		d.Database = types.ComponentStatus{Status: "success"}
	}

	switch {
	case h.cache == nil || !h.cfg.CacheEnabled():
		d.Cache = types.ComponentStatus{Status: "disabled"}
	case h.cache.Connected():
		d.Cache = types.ComponentStatus{Status: "connected"}
	default:
		d.Cache = types.ComponentStatus{Status: "unavailable"}
	}
	return d
}
