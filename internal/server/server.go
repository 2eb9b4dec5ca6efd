package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"docassist/internal/adapter/utils"
	"docassist/internal/config"
	"docassist/internal/middleware"
	"docassist/pkg/logkit"
)

var (
	server  *http.Server
	_logger *logkit.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string) {
	_logger = logkit.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Get("/healthz", middleware.HealthHandler)

	r.Router.Post("/sessions", middleware.CreateSessionHandler)
	r.Router.Delete("/sessions/{id}", middleware.DeleteSessionHandler)
	r.Router.Post("/sessions/{id}/reset", middleware.ResetSessionHandler)

	r.Router.Post("/sessions/{id}/documents", middleware.PostIngestHandler)
	r.Router.Post("/sessions/{id}/text", middleware.PostIngestTextHandler)

	r.Router.Post("/sessions/{id}/chat", middleware.ChatHandler)
	r.Router.Get("/sessions/{id}/history", middleware.GetHistoryHandler)
	r.Router.Delete("/sessions/{id}/history", middleware.DeleteHistoryHandler)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	println("\nServer is shutting down", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "error", err)
		}

		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
