//go:build windows

package supervisor

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func isPipeSignal(os.Signal) bool { return false }

func isPipeErrno(err error) bool {
	return errors.Is(err, windows.ERROR_BROKEN_PIPE) || errors.Is(err, windows.ERROR_NO_DATA)
}
