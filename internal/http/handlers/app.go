// Package handlers implements the HTTP surface: batch upload, status
// polling, report download and operational endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"valsign/internal/cleanup"
	"valsign/internal/domain"
	"valsign/internal/i18n"
	"valsign/internal/infra"
	"valsign/internal/middleware"
	"valsign/internal/storage"
)

type App struct {
	Store   domain.JobStore
	Uploads *storage.FileStore
	Reports *storage.FileStore
	Cleanup *cleanup.Manager
	Log     infra.Logger
}

func NewApp(store domain.JobStore, uploads, reports *storage.FileStore, cln *cleanup.Manager, log infra.Logger) *App {
	return &App{Store: store, Uploads: uploads, Reports: reports, Cleanup: cln, Log: log}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// detail mirrors the error body shape clients already parse.
func (a *App) detail(w http.ResponseWriter, r *http.Request, code int, key string, args ...any) {
	a.json(w, code, map[string]string{"detail": i18n.T(localeFor(r), key, args...)})
}

func localeFor(r *http.Request) string {
	return middleware.LocaleFromContext(r.Context())
}
