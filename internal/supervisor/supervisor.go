// Package supervisor runs the server until its transport ends or the
// process is told to stop, then releases the browser once.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"
)

// Exit codes returned by Run.
const (
	ExitOK               = 0
	ExitTransportFailure = 1
)

// DefaultShutdownTimeout bounds release when Config leaves it unset.
const DefaultShutdownTimeout = 5 * time.Second

// errServeReturned stands in for a nil serve result so the errgroup
// stops the signal watcher.
var errServeReturned = errors.New("server stopped")

// Config configures Run.
type Config struct {
	// ShutdownTimeout bounds release.
	ShutdownTimeout time.Duration
	// TransportClosed runs once the transport is no longer usable, before
	// release. Callers use it to silence per-call diagnostics.
	TransportClosed func()
}

// SignalError reports the signal that stopped Run.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("received %s", e.Signal)
}

// Run calls serve and waits for it to return or for a shutdown signal.
// Either way it cancels serve, marks the transport closed and calls
// release exactly once with a ShutdownTimeout context. The result is an
// exit code.
func Run(ctx context.Context, cfg Config, serve, release func(context.Context) error) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	defer signal.Stop(sigCh)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := serve(gctx); err != nil {
			return err
		}
		return errServeReturned
	})
	g.Go(func() error {
		select {
		case sig := <-sigCh:
			return &SignalError{Signal: sig}
		case <-gctx.Done():
			return nil
		}
	})

	cause := g.Wait()
	code := exitCode(ctx, cause)
	switch {
	case code == ExitOK:
		log.Printf("[supervisor] shutting down: %v", cause)
	case IsBrokenPipe(cause):
		log.Printf("[supervisor] client went away: %v", cause)
	default:
		log.Printf("[supervisor] transport failed: %v", cause)
	}

	if cfg.TransportClosed != nil {
		cfg.TransportClosed()
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := release(releaseCtx); err != nil {
		log.Printf("[supervisor] release: %v", err)
	}
	return code
}

func exitCode(ctx context.Context, cause error) int {
	var sigErr *SignalError
	switch {
	case errors.As(cause, &sigErr):
		if isPipeSignal(sigErr.Signal) {
			return ExitTransportFailure
		}
		return ExitOK
	case errors.Is(cause, errServeReturned), errors.Is(cause, io.EOF):
		return ExitOK
	case ctx.Err() != nil:
		return ExitOK
	}
	return ExitTransportFailure
}

// IsBrokenPipe reports whether err means the peer on the other end of
// the transport went away.
func IsBrokenPipe(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) {
		return true
	}
	return isPipeErrno(err)
}
