package http

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/pluanalyzer/pkg/application/services/assortment"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/commercetools"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/config"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/metrics"
	csvloader "github.com/vsinha/pluanalyzer/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/pluanalyzer/pkg/interfaces/http/handlers"
	"github.com/vsinha/pluanalyzer/pkg/interfaces/http/middleware"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the services the HTTP API is built from
type Dependencies struct {
	Server        config.ServerConfig
	Service       *assortment.Service
	Loader        *csvloader.Loader
	DSLocations   []string
	CommerceTools *commercetools.Client
	Metrics       *metrics.Collector
	Logger        *slog.Logger
}

// Router represents the HTTP router configuration
type Router struct {
	engine *gin.Engine
	server config.ServerConfig
	logger *slog.Logger
}

// NewRouter wires handlers and middleware into a gin engine
func NewRouter(deps Dependencies) *Router {
	if deps.Server.Mode != "" {
		gin.SetMode(deps.Server.Mode)
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.Loader == nil {
		deps.Loader = csvloader.NewLoader()
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(log), middleware.Logger(log))
	if deps.Server.MaxUploadMB > 0 {
		limit := deps.Server.MaxUploadMB << 20
		engine.MaxMultipartMemory = limit
		engine.Use(middleware.BodyLimit(limit))
	}

	plantHandler := handlers.NewPlantHandler(deps.Service, deps.Loader, log)
	analysisHandler := handlers.NewAnalysisHandler(deps.Service, deps.Loader, deps.DSLocations, log)
	ctHandler := handlers.NewCommerceToolsHandler(deps.CommerceTools, log)

	engine.GET("/healthz", handlers.Health)
	engine.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := engine.Group("/api")
	{
		api.GET("/plants", plantHandler.GetStatus)
		api.POST("/plants", plantHandler.Import)
		api.DELETE("/plants", plantHandler.Clear)

		api.POST("/analyze", analysisHandler.Analyze)
		api.POST("/analyze/export", analysisHandler.Export)

		api.GET("/ct/status", ctHandler.Status)
		api.POST("/ct/fetch", ctHandler.Fetch)
	}

	return &Router{engine: engine, server: deps.Server, logger: log}
}

// Handler returns the gin engine as an http.Handler
func (r *Router) Handler() nethttp.Handler {
	return r.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (r *Router) Run(ctx context.Context) error {
	srv := &nethttp.Server{
		Addr:         r.server.Addr(),
		Handler:      r.engine,
		ReadTimeout:  r.server.ReadTimeout,
		WriteTimeout: r.server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
