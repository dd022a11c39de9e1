package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter assembles the HTTP surface: health probe plus the two generation
// endpoints, behind the shared middleware chain.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
	)
	if len(app.Config.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(app.Config.CORSAllowedOrigins))
	}

	r.Get("/health", app.Health)

	// Generation endpoints are rate limited per client IP; each call fans out
	// to the upstream model.
	r.Group(func(r chi.Router) {
		if app.Config.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
		}
		r.Post("/hairstyle", app.Hairstyle)
		r.Post("/hairstyles/stream", app.HairstylesStream)
	})

	return r
}
