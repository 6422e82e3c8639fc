package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"valsign/internal/http/handlers"
	"valsign/internal/infra"
	"valsign/internal/middleware"
)

// Options carries the router's tunables.
type Options struct {
	Logger          infra.Logger
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	AllowedOrigins  []string
	UploadRateLimit int
	UploadRateSpan  time.Duration
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/healthz", app.Health)
	r.Get("/stats/storage", app.StorageStats)

	upload := chi.Router(r)
	if opts.UploadRateLimit > 0 {
		span := opts.UploadRateSpan
		if span <= 0 {
			span = time.Minute
		}
		upload = r.With(middleware.RateLimit(opts.UploadRateLimit, span))
	}
	upload.Post("/upload/", app.Upload)

	r.Get("/status/{jobID}", app.Status)
	r.Get("/report/{jobID}", app.Report)
	r.Get("/jobs/{jobID}/bundle", app.Bundle)
	r.Delete("/jobs/{jobID}/files", app.PurgeJobFiles)

	return r
}
