package httpserver

import (
	"net/http"
	"time"

	"media-catalog-go/internal/config"
	"media-catalog-go/internal/transport/httpserver/handler"
	authmw "media-catalog-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, sessions *authmw.Sessions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(authmw.NewCORS([]string{"http://localhost:5173"}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Post("/auth/register", handlers.Register)
		r.Post("/auth/login", handlers.Login)

		r.Group(func(r chi.Router) {
			r.Use(sessions.Middleware)

			// The event stream is long-lived, so the request timeout only
			// wraps the ordinary endpoints.
			r.Get("/events", handlers.Events)

			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(30 * time.Second))

				r.Get("/auth/me", handlers.Me)
				r.Patch("/auth/password", handlers.ChangePassword)

				r.Get("/libraries", handlers.ListLibraries)
				r.Post("/libraries", handlers.CreateLibrary)
				r.Get("/libraries/{id}", handlers.GetLibrary)
				r.Delete("/libraries/{id}", handlers.DeleteLibrary)
				r.Get("/libraries/{id}/media", handlers.LibraryMedia)
				r.Get("/libraries/{id}/unmatched", handlers.LibraryUnmatched)

				r.Get("/invites", handlers.ListInvites)
				r.Post("/invites", handlers.CreateInvite)
				r.Delete("/invites/{id}", handlers.RevokeInvite)
			})
		})
	})

	return r
}
