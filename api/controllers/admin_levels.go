package controllers

import (
	"net/http"
	"sort"

	"github.com/brightpath/academy-backend/api/responses"
	"github.com/brightpath/academy-backend/api/validators"
	"github.com/brightpath/academy-backend/internal/levels"
	"github.com/brightpath/academy-backend/pkg/db/models"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

type levelThresholdBody struct {
	Level      int `json:"level" validate:"gt=0"`
	XPRequired int `json:"xp_required" validate:"gte=0"`
}

type replaceLevelTableBody struct {
	Thresholds []levelThresholdBody `json:"thresholds" validate:"required,min=1,dive"`
}

// AdminGetLevelTable returns the current level thresholds.
func AdminGetLevelTable(repo levels.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "levels repository unavailable"))
			return
		}

		table, err := repo.Table(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load level table"))
			return
		}
		responses.WriteSuccess(w, table)
	}
}

// AdminReplaceLevelTable swaps the level table wholesale. Existing users keep
// their stored level until their next XP change re-derives it.
func AdminReplaceLevelTable(repo levels.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "levels repository unavailable"))
			return
		}

		var body replaceLevelTableBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows := make([]models.LevelThreshold, 0, len(body.Thresholds))
		seen := make(map[int]bool, len(body.Thresholds))
		for _, t := range body.Thresholds {
			if seen[t.Level] {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "duplicate level in table"))
				return
			}
			seen[t.Level] = true
			rows = append(rows, models.LevelThreshold{Level: t.Level, XPRequired: t.XPRequired})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Level < rows[j].Level })

		if err := repo.Replace(r.Context(), rows); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace level table"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
