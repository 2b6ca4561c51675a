// Package server exposes stations, arrivals and widgets over HTTP.
// Widget refreshes are triggered by taps and config saves arriving
// here, as well as by whatever scheduler polls the refresh endpoint.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go/http"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tidbyt.dev/tram"
	"tidbyt.dev/tram/metrics"
	"tidbyt.dev/tram/widget"
)

type Server struct {
	Manager     *tram.Manager
	Widgets     *widget.Store
	Refresher   *tram.Refresher
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	Environment string
}

func New(manager *tram.Manager, widgets *widget.Store, m *metrics.Metrics) *Server {
	return &Server{
		Manager:     manager,
		Widgets:     widgets,
		Refresher:   tram.NewRefresher(manager, widgets),
		Metrics:     m,
		Logger:      slog.Default().With(slog.String("component", "server")),
		Environment: "development",
	}
}

// Routes returns the handler for all endpoints, wrapped in Sentry
// middleware.
func (s *Server) Routes() http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", s.healthcheckHandler)
	if s.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	router.HandlerFunc(http.MethodGet, "/v1/stations", s.stationsHandler)
	router.GET("/v1/stations/:id/arrivals", s.arrivalsHandler)
	router.GET("/v1/stations/:id/lines", s.linesHandler)

	router.GET("/v1/widgets/:id", s.widgetHandler)
	router.DELETE("/v1/widgets/:id", s.deleteWidgetHandler)
	router.POST("/v1/widgets/:id/refresh", s.refreshHandler)
	router.POST("/v1/widgets/:id/next", s.nextHandler)
	router.POST("/v1/widgets/:id/prev", s.prevHandler)
	router.POST("/v1/widgets/:id/stops", s.addStopHandler)
	router.DELETE("/v1/widgets/:id/stops/:index", s.removeStopHandler)

	sentryHandler := sentryhttp.New(sentryhttp.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})

	return sentryHandler.Handle(router)
}

// Returns an http.Server for the given address.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  time.Minute,
		ErrorLog:     slog.NewLogLogger(s.Logger.Handler(), slog.LevelError),
	}
}
