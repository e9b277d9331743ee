package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	closed   atomic.Int32
	released atomic.Int32
	// closedFirst is set when TransportClosed ran before release.
	closedFirst atomic.Bool
}

func (r *recorder) config() Config {
	return Config{
		ShutdownTimeout: time.Second,
		TransportClosed: func() { r.closed.Add(1) },
	}
}

func (r *recorder) release(ctx context.Context) error {
	r.closedFirst.Store(r.closed.Load() == 1)
	r.released.Add(1)
	return nil
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		serveErr error
		want     int
	}{
		{"clean stop", nil, ExitOK},
		{"stdin closed", fmt.Errorf("read: %w", io.EOF), ExitOK},
		{"broken pipe", fmt.Errorf("write: %w", io.ErrClosedPipe), ExitTransportFailure},
		{"transport error", errors.New("framing error"), ExitTransportFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r recorder
			code := Run(context.Background(), r.config(), func(ctx context.Context) error {
				return tt.serveErr
			}, r.release)

			assert.Equal(t, tt.want, code)
			assert.EqualValues(t, 1, r.closed.Load())
			assert.EqualValues(t, 1, r.released.Load())
			assert.True(t, r.closedFirst.Load(), "transport marked closed before release")
		})
	}
}

func TestRunParentCancel(t *testing.T) {
	var r recorder
	ctx, cancel := context.WithCancel(context.Background())

	code := Run(ctx, r.config(), func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}, r.release)

	assert.Equal(t, ExitOK, code)
	assert.EqualValues(t, 1, r.released.Load())
}

func TestRunReleaseIsBounded(t *testing.T) {
	cfg := Config{ShutdownTimeout: 20 * time.Millisecond}

	var releaseErr error
	start := time.Now()
	code := Run(context.Background(), cfg, func(ctx context.Context) error {
		return nil
	}, func(ctx context.Context) error {
		<-ctx.Done()
		releaseErr = ctx.Err()
		return releaseErr
	})

	assert.Equal(t, ExitOK, code)
	assert.ErrorIs(t, releaseErr, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunReleaseSurvivesCanceledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var releaseCtxErr error
	Run(ctx, Config{ShutdownTimeout: time.Second}, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	}, func(ctx context.Context) error {
		releaseCtxErr = ctx.Err()
		return nil
	})

	assert.NoError(t, releaseCtxErr)
}

func TestIsBrokenPipe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"wrapped closed pipe", fmt.Errorf("write stdout: %w", io.ErrClosedPipe), true},
		{"closed file", &os.PathError{Op: "write", Path: "/dev/stdout", Err: os.ErrClosed}, true},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBrokenPipe(tt.err))
		})
	}
}

func TestSignalError(t *testing.T) {
	err := error(&SignalError{Signal: os.Interrupt})
	require.EqualError(t, err, "received interrupt")
}
