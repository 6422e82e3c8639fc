package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"valsign/internal/domain"
	"valsign/internal/i18n"
)

// Report serves the finished validation report. Until the job completes
// the endpoint answers 404, which pollers treat as "not ready yet".
func (a *App) Report(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := a.Store.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			a.detail(w, r, http.StatusNotFound, i18n.MsgJobNotFound)
			return
		}
		a.Log.Error().Err(err).Str("job_id", jobID).Msg("report: lookup failed")
		a.detail(w, r, http.StatusInternalServerError, i18n.MsgInternalError)
		return
	}
	if job.Status != domain.JobCompleted || job.ReportPath == "" {
		a.detail(w, r, http.StatusNotFound, i18n.MsgReportNotReady)
		return
	}

	rc, err := a.Reports.Open(job.ReportPath)
	if err != nil {
		a.Log.Error().Err(err).Str("job_id", jobID).Str("report", job.ReportPath).Msg("report: open failed")
		a.detail(w, r, http.StatusInternalServerError, i18n.MsgInternalError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="relatorio_validacao.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		a.Log.Warn().Err(err).Str("job_id", jobID).Msg("report: stream interrupted")
	}
}
