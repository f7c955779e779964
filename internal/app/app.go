package app

import (
	"net/http"

	"media-catalog-go/internal/config"
	"media-catalog-go/internal/db"
	accountdomain "media-catalog-go/internal/domain/account"
	librarydomain "media-catalog-go/internal/domain/library"
	"media-catalog-go/internal/events"
	accountrepo "media-catalog-go/internal/repository/postgres/account"
	libraryrepo "media-catalog-go/internal/repository/postgres/library"
	"media-catalog-go/internal/scanner"
	"media-catalog-go/internal/transport/httpserver"
	"media-catalog-go/internal/transport/httpserver/handler"
	authmw "media-catalog-go/internal/transport/httpserver/middleware"
	"media-catalog-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	handles    *db.Handles
	bus        *events.Bus
	cascade    *librarydomain.Cascade
	log        logger.Logger
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	handles, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: applying migrations")
	if err := db.Migrate(handles.Writer); err != nil {
		_ = handles.Close()
		return nil, err
	}

	arbiter := db.NewArbiter(handles)
	libraries := libraryrepo.NewPostgres(arbiter)
	accounts := accountrepo.NewPostgres(arbiter)

	bus := events.NewBus(cfg.Events.SubscriberBuffer)

	cascade := librarydomain.NewCascade(libraries, cfg.Cascade.QueueSize, log)
	cascade.Start()

	scan := scanner.New(libraries, log)

	libraryService := librarydomain.NewService(libraries, bus, cascade, scan, log)
	accountService := accountdomain.NewService(accounts, log)

	sessions := authmw.NewSessions()
	handlers := handler.New(libraryService, accountService, bus, sessions, log)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, sessions)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		handles:    handles,
		bus:        bus,
		cascade:    cascade,
		log:        log,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// Close drains the deletion worker before the database goes away so queued
// cascades get their chance to run.
func (a *App) Close() error {
	a.bus.Close()
	a.cascade.Stop()
	return a.handles.Close()
}
