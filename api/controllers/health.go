package controllers

import (
	"net/http"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/api/responses"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/config"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
)

type onlineReporter interface {
	Online() bool
}

// Healthz reports liveness of the terminal core plus its local store and the
// last known backend connectivity state.
func Healthz(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, conn onlineReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Hermes-Env", cfg.App.Env)

		status := map[string]any{
			"status":   "ok",
			"terminal": cfg.Terminal.Label,
		}
		if conn != nil {
			status["backend_online"] = conn.Online()
		}
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				status["status"] = "degraded"
				status["store"] = "unreachable"
				if logg != nil {
					logg.Error(r.Context(), "local store ping failed", err)
				}
			}
		}

		responses.WriteSuccess(w, status)
	}
}
