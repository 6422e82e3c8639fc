package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"valsign/internal/domain"
	"valsign/internal/i18n"
)

type statusFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	IsValid  *bool  `json:"is_valid,omitempty"`
	Error    string `json:"error,omitempty"`
}

type statusRejected struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type statusResponse struct {
	ID         string           `json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	Status     string           `json:"status"`
	Progress   int              `json:"progress"`
	Files      []statusFile     `json:"files"`
	Rejected   []statusRejected `json:"rejected_files,omitempty"`
	ReportPath string           `json:"report_path,omitempty"`
}

// Status reports the current state of a validation job.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := a.Store.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			a.detail(w, r, http.StatusNotFound, i18n.MsgJobNotFound)
			return
		}
		a.Log.Error().Err(err).Str("job_id", jobID).Msg("status: lookup failed")
		a.detail(w, r, http.StatusInternalServerError, i18n.MsgInternalError)
		return
	}

	resp := statusResponse{
		ID:         job.ID,
		CreatedAt:  job.CreatedAt,
		Status:     job.Status.Wire(),
		Progress:   job.Progress,
		Files:      make([]statusFile, 0, len(job.Files)),
		ReportPath: job.ReportPath,
	}
	for _, f := range job.Files {
		sf := statusFile{Filename: f.Filename, Status: f.State.Wire(), Error: f.Error}
		if f.State == domain.FileValidated {
			valid := f.IsValid
			sf.IsValid = &valid
		}
		resp.Files = append(resp.Files, sf)
	}
	for _, rej := range job.Rejected {
		resp.Rejected = append(resp.Rejected, statusRejected{Filename: rej.Filename, Reason: rej.Reason})
	}
	a.json(w, http.StatusOK, resp)
}
