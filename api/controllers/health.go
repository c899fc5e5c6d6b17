package controllers

import (
	"context"
	"net/http"

	"github.com/brightpath/academy-backend/api/responses"
	"github.com/brightpath/academy-backend/pkg/config"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Academy-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

type readinessCheck struct {
	name string
	ping func(ctx context.Context) error
}

// HealthReady reports ready only when both the database and redis answer.
func HealthReady(cfg *config.Config, dbPing, redisPing func(ctx context.Context) error, logg *logger.Logger) http.HandlerFunc {
	checks := []readinessCheck{
		{name: "database", ping: dbPing},
		{name: "redis", ping: redisPing},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Academy-Env", cfg.App.Env)
		for _, check := range checks {
			if check.ping == nil {
				continue
			}
			if err := check.ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" not ready"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
