// internal/server/graceful.go
//
// Listen, wait for SIGINT/SIGTERM or ctx cancellation, then drain.
//
// Shutdown order
// --------------
//  1. http.Server.Shutdown stops accepting and waits for in-flight requests.
//  2. Every Closer passed to Run runs in order (form instance cache, audit
//     pool, geoip reader), sharing the same deadline.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baraliresort/reserve/internal/logger"
)

// Closer is one shutdown step.
type Closer func(context.Context) error

// Run serves srv until a signal arrives or ctx ends, then shuts down within
// timeout.
func Run(ctx context.Context, srv *http.Server, timeout time.Duration, closers ...Closer) error {
	log := logger.FromContext(ctx)
	log.Infow("starting server", "addr", srv.Addr)

	done := handleShutdown(ctx, srv, timeout, closers)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server crashed: %w", err)
	}
	return <-done
}

func handleShutdown(ctx context.Context, srv *http.Server, timeout time.Duration, closers []Closer) <-chan error {
	log := logger.FromContext(ctx)
	done := make(chan error, 1)
	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(exit)
		select {
		case sig := <-exit:
			log.Infow("shutting down server", "signal", sig.String())
		case <-ctx.Done():
			log.Infow("shutting down server", "reason", ctx.Err().Error())
		}

		ctxTTL, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		errs := []error{srv.Shutdown(ctxTTL)}
		for _, c := range closers {
			errs = append(errs, c(ctxTTL))
		}
		if err := errors.Join(errs...); err != nil {
			done <- fmt.Errorf("graceful shutdown failed: %w", err)
			return
		}
		log.Infow("graceful shutdown successful")
		done <- nil
	}()
	return done
}
