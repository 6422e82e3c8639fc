package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"valsign/internal/domain"
	"valsign/internal/i18n"
	"valsign/pkg/zip"
)

// Bundle streams a zip archive with the validation report and the original
// uploaded documents. Only available once the job has completed.
func (a *App) Bundle(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := a.Store.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			a.detail(w, r, http.StatusNotFound, i18n.MsgJobNotFound)
			return
		}
		a.Log.Error().Err(err).Str("job_id", jobID).Msg("bundle: lookup failed")
		a.detail(w, r, http.StatusInternalServerError, i18n.MsgInternalError)
		return
	}
	if job.Status != domain.JobCompleted || job.ReportPath == "" {
		a.detail(w, r, http.StatusNotFound, i18n.MsgReportNotReady)
		return
	}

	entries := []zip.Entry{{
		Name: "relatorio_validacao.json",
		Open: func() (io.ReadCloser, error) { return a.Reports.Open(job.ReportPath) },
	}}
	for _, f := range job.Files {
		key := f.Path
		entries = append(entries, zip.Entry{
			Name: "documentos/" + f.Filename,
			Open: func() (io.ReadCloser, error) { return a.Uploads.Open(key) },
		})
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="validacao_%s.zip"`, jobID))
	if err := zip.Write(w, entries); err != nil {
		a.Log.Warn().Err(err).Str("job_id", jobID).Msg("bundle: stream interrupted")
	}
}
