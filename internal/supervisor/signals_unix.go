//go:build !windows

package supervisor

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// SIGPIPE is caught so a write to a closed stdout fails with EPIPE
// instead of killing the process before the browser is released.
var shutdownSignals = []os.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGHUP, unix.SIGPIPE}

func isPipeSignal(sig os.Signal) bool {
	return sig == unix.SIGPIPE
}

func isPipeErrno(err error) bool {
	return errors.Is(err, unix.EPIPE) || errors.Is(err, unix.ECONNRESET)
}
