package controllers

import (
	"net/http"

	"github.com/brightpath/academy-backend/api/responses"
	"github.com/brightpath/academy-backend/api/validators"
	"github.com/brightpath/academy-backend/internal/mentoring"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

// AdminCreateMentor adds a mentor to the roster.
func AdminCreateMentor(svc mentoring.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "mentoring service unavailable"))
			return
		}

		var body mentoring.MentorInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mentor, err := svc.CreateMentor(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, mentor)
	}
}

// AdminConfirmBooking confirms a pending booking.
func AdminConfirmBooking(svc mentoring.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "mentoring service unavailable"))
			return
		}

		bookingID, err := parseIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ConfirmBooking(r.Context(), bookingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"confirmed": true})
	}
}

// AdminRejectBooking rejects a pending booking, returning any free slot.
func AdminRejectBooking(svc mentoring.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "mentoring service unavailable"))
			return
		}

		bookingID, err := parseIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RejectBooking(r.Context(), bookingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"rejected": true})
	}
}
