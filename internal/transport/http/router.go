package http

import (
	"net/http"

	"adaptive-quiz-service/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterDeps are the handlers and middleware the router mounts. Limiter and
// Metrics are optional.
type RouterDeps struct {
	Sessions *SessionHandler
	History  *HistoryHandler
	Users    *UserHandler
	WS       *WSHandler
	Auth     *Authenticator
	Limiter  *RateLimiter
	Metrics  *metrics.Recorder
	Logger   *zap.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	logger := orNop(d.Logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(observe(logger, d.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}

		r.Route("/api/users", func(r chi.Router) {
			r.Post("/auth", d.Users.Authenticate)
			r.Get("/{authId}", d.Users.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Middleware)

			r.Route("/api/sessions", func(r chi.Router) {
				r.Post("/", d.Sessions.Start)
				r.Get("/{id}", d.Sessions.Get)
				r.Post("/{id}/answers", d.Sessions.Answer)
				r.Post("/{id}/skip", d.Sessions.Skip)
				r.Post("/{id}/finish", d.Sessions.Finish)
				r.Delete("/{id}", d.Sessions.Abandon)
			})

			r.Route("/api/quiz", func(r chi.Router) {
				r.Post("/save-history", d.History.Save)
				r.Get("/histories", d.History.List)
				r.Get("/histories/{id}", d.History.Get)
			})

			r.Get("/ws", d.WS.ServeWS)
		})
	})
	return r
}
