package controllers

import (
	"net/http"

	"github.com/brightpath/academy-backend/api/responses"
	"github.com/brightpath/academy-backend/api/validators"
	"github.com/brightpath/academy-backend/internal/economy"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

// AdminCreateArtifact adds a new artifact to the shop catalog.
func AdminCreateArtifact(svc economy.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "economy service unavailable"))
			return
		}

		var body economy.ArtifactInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		artifact, err := svc.CreateArtifact(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, artifact)
	}
}

// AdminUpdateArtifact rewrites an existing artifact.
func AdminUpdateArtifact(svc economy.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "economy service unavailable"))
			return
		}

		artifactID, err := parseIDParam(r, "artifactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body economy.ArtifactInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		artifact, err := svc.UpdateArtifact(r.Context(), artifactID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, artifact)
	}
}

// AdminDeleteArtifact removes an artifact from the catalog.
func AdminDeleteArtifact(svc economy.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "economy service unavailable"))
			return
		}

		artifactID, err := parseIDParam(r, "artifactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteArtifact(r.Context(), artifactID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
