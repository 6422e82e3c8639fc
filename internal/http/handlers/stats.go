package handlers

import "net/http"

// StorageStats exposes disk usage for the managed directories.
func (a *App) StorageStats(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Cleanup.Stats())
}
