package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/paytaksi/paytaksi-backend/api/responses"
	"github.com/paytaksi/paytaksi-backend/pkg/config"
	"github.com/paytaksi/paytaksi-backend/pkg/db"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PayTaksi-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each hard dependency and reports per-component status.
// A nil dependency is reported as skipped rather than failing readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP, pubsubP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PayTaksi-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		components := map[string]string{}
		healthy := true

		check := func(name string, p pinger) {
			if p == nil {
				components[name] = "skipped"
				return
			}
			components[name] = "ok"
			if err := p.Ping(ctx); err != nil {
				components[name] = err.Error()
				healthy = false
			}
		}

		if dbP != nil {
			components["db"] = "ok"
			if err := dbP.Ping(ctx); err != nil {
				components["db"] = err.Error()
				healthy = false
			}
		} else {
			components["db"] = "skipped"
		}
		check("redis", redisP)
		check("pubsub", pubsubP)

		status := "ready"
		code := http.StatusOK
		if !healthy {
			status = "degraded"
			code = http.StatusServiceUnavailable
			if logg != nil {
				logg.Warn(r.Context(), "readiness check failed")
			}
		}

		responses.WriteSuccessStatus(w, code, map[string]any{
			"status":     status,
			"components": components,
		})
	}
}
