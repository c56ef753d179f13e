// Package lifecycle runs the process shutdown sequence: one transition from
// running to shutting down, ordered shutdown hooks, and a watchdog that
// forces the process down when the hooks stall.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// State of the process.
type State int32

const (
	StateRunning State = iota
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ErrAlreadyShuttingDown is returned by Shutdown after the first call.
var ErrAlreadyShuttingDown = errors.New("lifecycle: already shutting down")

// ForcedExitCode is passed to the exit function when the watchdog fires.
const ForcedExitCode = 1

// Hook releases one resource during shutdown.
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Manager owns the shutdown sequence.
type Manager struct {
	state  atomic.Int32
	grace  time.Duration
	logger *zap.Logger
	exit   func(int)

	mu    sync.Mutex
	hooks []namedHook
}

// Option customizes a Manager.
type Option func(*Manager)

// WithExit replaces os.Exit for the watchdog.
func WithExit(exit func(code int)) Option {
	return func(m *Manager) { m.exit = exit }
}

// New builds a manager whose watchdog fires after grace.
func New(grace time.Duration, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{grace: grace, logger: logger, exit: os.Exit}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State reports the current state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// OnShutdown appends a hook. Hooks run in registration order.
func (m *Manager) OnShutdown(name string, fn Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, fn: fn})
}

// Shutdown moves to StateShuttingDown and runs every hook within the grace
// period. If the hooks have not returned when the grace period ends, the
// watchdog calls the exit function with ForcedExitCode.
func (m *Manager) Shutdown(reason string) error {
	if !m.state.CompareAndSwap(int32(StateRunning), int32(StateShuttingDown)) {
		return ErrAlreadyShuttingDown
	}
	m.logger.Info("shutting down", zap.String("reason", reason), zap.Duration("grace", m.grace))

	watchdog := time.AfterFunc(m.grace, func() {
		m.logger.Error("graceful shutdown timed out, forcing exit", zap.Duration("grace", m.grace))
		m.exit(ForcedExitCode)
	})
	defer watchdog.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), m.grace)
	defer cancel()

	m.mu.Lock()
	hooks := append([]namedHook(nil), m.hooks...)
	m.mu.Unlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook.fn(ctx); err != nil {
			m.logger.Warn("shutdown hook failed", zap.String("hook", hook.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
		}
	}
	m.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

// Run blocks until a signal arrives or ctx is done, then shuts down. Later
// signals are logged and ignored.
func (m *Manager) Run(ctx context.Context, signals <-chan os.Signal) error {
	reason := "context done"
	select {
	case sig := <-signals:
		reason = sig.String()
	case <-ctx.Done():
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case sig := <-signals:
				m.logger.Warn("ignoring signal, shutdown in progress", zap.String("signal", sig.String()))
			case <-done:
				return
			}
		}
	}()

	return m.Shutdown(reason)
}
