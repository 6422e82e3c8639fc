package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"valsign/internal/domain"
	"valsign/internal/i18n"
)

// Upload accepts a multipart batch under the repeated "files" field,
// stores the PDF payloads and enqueues a validation job. Files without a
// .pdf extension are recorded as rejected instead of failing the batch.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		a.detail(w, r, http.StatusBadRequest, i18n.MsgNoFilesUploaded)
		return
	}

	jobID := uuid.NewString()
	job := &domain.Job{
		ID:        jobID,
		CreatedAt: time.Now().UTC(),
		Status:    domain.JobPending,
	}

	seen := map[string]bool{}
	var sawPart bool
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			a.Log.Warn().Err(err).Str("job_id", jobID).Msg("upload: multipart read failed")
			a.detail(w, r, http.StatusBadRequest, i18n.MsgNoFilesUploaded)
			return
		}
		if part.FormName() != "files" || part.FileName() == "" {
			part.Close()
			continue
		}
		sawPart = true
		name := path.Base(part.FileName())
		if !strings.EqualFold(path.Ext(name), ".pdf") {
			job.Rejected = append(job.Rejected, domain.RejectedFile{
				Filename: name,
				Reason:   "arquivo não é PDF",
			})
			part.Close()
			continue
		}
		if seen[name] {
			part.Close()
			continue
		}
		seen[name] = true
		if err := a.saveUpload(r, job, jobID, name, part); err != nil {
			a.Log.Error().Err(err).Str("job_id", jobID).Str("filename", name).Msg("upload: save failed")
			a.detail(w, r, http.StatusInternalServerError, i18n.MsgInternalError)
			return
		}
	}

	if !sawPart {
		a.detail(w, r, http.StatusBadRequest, i18n.MsgNoFilesUploaded)
		return
	}
	if len(job.Files) == 0 {
		a.detail(w, r, http.StatusBadRequest, i18n.MsgNoValidPDF)
		return
	}

	if err := a.Store.Create(r.Context(), job); err != nil {
		a.Log.Error().Err(err).Str("job_id", jobID).Msg("upload: create job failed")
		a.detail(w, r, http.StatusInternalServerError, i18n.MsgInternalError)
		return
	}

	a.Log.Info().Str("job_id", jobID).Int("files", len(job.Files)).Int("rejected", len(job.Rejected)).Msg("upload: job created")
	locale := localeFor(r)
	a.json(w, http.StatusOK, map[string]any{
		"job_id":  jobID,
		"message": i18n.T(locale, i18n.MsgFilesReceived, len(job.Files)),
	})
}

func (a *App) saveUpload(r *http.Request, job *domain.Job, jobID, name string, part *multipart.Part) error {
	defer part.Close()
	key := jobID + "/" + name
	saved, _, err := a.Uploads.Save(r.Context(), key, part)
	if err != nil {
		return err
	}
	job.Files = append(job.Files, domain.FileResult{
		Filename: name,
		Path:     saved,
		State:    domain.FilePending,
	})
	return nil
}
