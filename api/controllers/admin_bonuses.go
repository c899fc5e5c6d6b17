package controllers

import (
	"net/http"

	"github.com/brightpath/academy-backend/api/responses"
	"github.com/brightpath/academy-backend/api/validators"
	"github.com/brightpath/academy-backend/internal/bonuses"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

// AdminCreateBonusTask publishes a bonus task.
func AdminCreateBonusTask(svc bonuses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bonuses service unavailable"))
			return
		}

		var body bonuses.TaskInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		task, err := svc.CreateTask(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, task)
	}
}

// AdminListPendingBonusSubmissions returns the review queue.
func AdminListPendingBonusSubmissions(svc bonuses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bonuses service unavailable"))
			return
		}

		rows, err := svc.ListPendingSubmissions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminApproveBonusSubmission moves a pending submission to approved.
func AdminApproveBonusSubmission(svc bonuses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bonuses service unavailable"))
			return
		}

		submissionID, err := parseIDParam(r, "submissionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ApproveSubmission(r.Context(), submissionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"approved": true})
	}
}
