package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"valsign/internal/domain"
	"valsign/internal/i18n"
)

// PurgeJobFiles removes a job's stored uploads and its report artifact.
// The job record itself stays queryable.
func (a *App) PurgeJobFiles(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if _, err := a.Store.Get(r.Context(), jobID); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			a.detail(w, r, http.StatusNotFound, i18n.MsgJobNotFound)
			return
		}
		a.Log.Error().Err(err).Str("job_id", jobID).Msg("purge: lookup failed")
		a.detail(w, r, http.StatusInternalServerError, i18n.MsgInternalError)
		return
	}
	if err := a.Cleanup.PurgeJob(jobID); err != nil {
		a.Log.Error().Err(err).Str("job_id", jobID).Msg("purge: failed")
		a.detail(w, r, http.StatusInternalServerError, i18n.MsgInternalError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
