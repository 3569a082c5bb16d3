// Package http exposes the account and submission stores as a JSON API on a
// chi router.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/services"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	JWTKey          []byte
	SessionValidity time.Duration
	MaxUploadBytes  int64
	AllowedOrigins  []string
	LogLevel        slog.Level
	// Version is attached to every access log line.
	Version string
}

type HttpServer struct {
	accounts    *services.AccountService
	submissions *services.SubmissionService
	router      *chi.Mux
	logger      logging.Logger
	opts        Options
}

func NewHttpServer(accounts *services.AccountService, submissions *services.SubmissionService, logger logging.Logger, opts Options) *HttpServer {
	router := chi.NewRouter()

	httpLogger := httplog.NewLogger("recipekeeper", httplog.Options{
		JSON:             true,
		LogLevel:         opts.LogLevel,
		Concise:          true,
		RequestHeaders:   false,
		MessageFieldName: "message",
		QuietDownRoutes:  []string{"/healthz"},
		QuietDownPeriod:  time.Minute,
		Tags: map[string]string{
			"version": opts.Version,
		},
	})

	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(httpLogger))
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Use(getJwtAuthMiddleware(opts.JWTKey))

	server := &HttpServer{
		accounts:    accounts,
		submissions: submissions,
		router:      router,
		logger:      logger.With("module", "http_server"),
		opts:        opts,
	}

	server.routes()

	return server
}

// Handler returns the root handler for an http.Server.
func (httpserver *HttpServer) Handler() http.Handler {
	return httpserver.router
}

// Run serves on address until ctx is cancelled, then drains in-flight
// requests.
func (httpserver *HttpServer) Run(ctx context.Context, address string) error {
	listen, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           httpserver.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpserver.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			httpserver.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	httpserver.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (httpserver *HttpServer) routes() {
	r := httpserver.router
	r.Get("/healthz", httpserver.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/accounts", httpserver.createAccount)
		r.Post("/sessions", httpserver.createSession)

		r.Get("/submissions", httpserver.listSubmissions)
		r.Post("/submissions", httpserver.createSubmission)
		r.Get("/submissions/{id}", httpserver.getSubmission)

		r.Get("/attachments/{kind}/{name}", httpserver.getAttachment)
		r.Get("/food-types", httpserver.listFoodTypes)
	})
}

func (httpserver *HttpServer) healthz(w http.ResponseWriter, r *http.Request) {
	writeJsonSuccessResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
