package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// serve runs srv until a signal arrives on quit or the listener fails, then
// drains in-flight requests for at most drain. It returns the listener error,
// or nil after a signal-driven shutdown.
func serve(srv *http.Server, quit <-chan os.Signal, drain time.Duration, log logrus.FieldLogger) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var err error
	select {
	case <-quit:
		log.Info("Shutting down server...")
	case err = <-serveErr:
		log.WithError(err).Error("Server failed, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
		log.WithError(shutdownErr).Error("Server forced to shut down")
	}
	return err
}
