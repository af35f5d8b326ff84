package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"smartstudio/internal/http/handlers"
	"smartstudio/internal/middleware"
)

// Options configures the cross-cutting middleware.
type Options struct {
	Logger          zerolog.Logger
	DefaultLocale   language.Tag
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
}

// NewRouter mounts the API both at the root and under /api.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.Metrics,
		middleware.CORS(),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		middleware.Authenticate(app.Verifier),
	)
	r.NotFound(app.NotFound)
	r.MethodNotAllowed(app.MethodNotAllowed)

	r.Handle("/metrics", promhttp.Handler())

	api := apiRoutes(app, opts)
	r.Mount("/api", api)
	r.Mount("/", api)
	return r
}

func apiRoutes(app *handlers.App, opts Options) chi.Router {
	r := chi.NewRouter()
	r.NotFound(app.NotFound)
	r.MethodNotAllowed(app.MethodNotAllowed)

	r.Get("/health", app.Health)

	r.Post("/generate-concepts", app.GenerateConcepts)
	r.Post("/update-image", app.UpdateImage)
	r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute, app.RateLimited)).
		Post("/auto-fill", app.AutoFill)

	r.Get("/payments", app.Payments)
	r.Post("/payments", app.Payments)
	r.Get("/sumit-webhook", app.PaymentWebhook)
	r.Post("/sumit-webhook", app.PaymentWebhook)
	return r
}
