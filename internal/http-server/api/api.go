package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"teatrlead/internal/config"
	"teatrlead/internal/http-server/handlers/errors"
	"teatrlead/internal/http-server/handlers/links"
	"teatrlead/internal/http-server/handlers/statistics"
	"teatrlead/internal/http-server/middleware/authenticate"
	"teatrlead/internal/http-server/middleware/timeout"
	"teatrlead/lib/api/response"
	"teatrlead/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	links.Core
	statistics.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(5))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok("alive"))
	})

	router.Route("/v1", func(rootApi chi.Router) {
		rootApi.Use(authenticate.New(log, handler))
		rootApi.Post("/links", links.Create(log, handler))
		rootApi.Route("/stats", func(st chi.Router) {
			st.Get("/overview", statistics.Overview(log, handler))
			st.Get("/funnel", statistics.Funnel(log, handler))
			st.Get("/cities", statistics.Cities(log, handler))
			st.Get("/projects", statistics.Projects(log, handler))
			st.Get("/sources", statistics.Sources(log, handler))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:      router,
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIp, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
