package handler

import (
	"net/http"

	accountdomain "media-catalog-go/internal/domain/account"
	librarydomain "media-catalog-go/internal/domain/library"
	"media-catalog-go/internal/events"
	"media-catalog-go/internal/transport/httpserver/middleware"
	"media-catalog-go/pkg/logger"
)

type Handlers struct {
	Libraries *librarydomain.Service
	Accounts  *accountdomain.Service

	bus      *events.Bus
	sessions *middleware.Sessions
	log      logger.Logger
}

func New(libraries *librarydomain.Service, accounts *accountdomain.Service, bus *events.Bus, sessions *middleware.Sessions, log logger.Logger) *Handlers {
	return &Handlers{
		Libraries: libraries,
		Accounts:  accounts,
		bus:       bus,
		sessions:  sessions,
		log:       log,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
