package feishu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrMissingCredentials is returned by Start when appId or appSecret
	// is absent from the configuration.
	ErrMissingCredentials = errors.New("feishu: appId and appSecret are required")
	// ErrAlreadyRunning is returned by Start when the adapter is already
	// starting or running.
	ErrAlreadyRunning = errors.New("feishu: channel already running")
	// ErrConnectionLost is returned when the connection goroutine exits
	// without Stop having been requested.
	ErrConnectionLost = errors.New("feishu: connection lost")
)

// State is the connection lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// transport is the long-lived inbound connection run by the supervisor.
type transport interface {
	// Run blocks for the lifetime of the connection. Implementations call
	// ready exactly once, after the connection is established.
	Run(ctx context.Context, ready func()) error
}

// supervisor owns the lifecycle of the inbound connection. The transport
// runs on its own goroutine because its read loop must not share the
// caller's scheduling; the supervisor bridges the two domains with a
// one-shot readiness signal and a captured-error channel, then polls the
// goroutine's liveness until shutdown.
type supervisor struct {
	readyTimeout time.Duration
	pollInterval time.Duration

	running atomic.Bool

	mu    sync.Mutex
	state State
}

func newSupervisor() *supervisor {
	return &supervisor{
		readyTimeout: 10 * time.Second,
		pollInterval: time.Second,
		state:        StateIdle,
	}
}

func (s *supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Stop requests a cooperative shutdown by clearing the running flag. There
// is no forced-termination primitive for the connection goroutine; it may
// keep running until process exit.
func (s *supervisor) Stop() {
	s.running.Store(false)
	s.setState(StateStopped)
}

// Run starts t on its own goroutine, waits up to readyTimeout for the
// connection to come up, then supervises it until Stop, ctx cancellation,
// or connection death. A startup failure is returned synchronously. At
// most one Run is active per supervisor; fresh channels are created per
// call so a stopped supervisor can be started again.
func (s *supervisor) Run(ctx context.Context, t transport) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)
	s.setState(StateStarting)

	done := make(chan struct{})
	readyCh := make(chan struct{})
	errCh := make(chan error, 1)
	var readyOnce sync.Once
	signalReady := func() { readyOnce.Do(func() { close(readyCh) }) }

	go func() {
		defer close(done)
		if err := t.Run(ctx, signalReady); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()

	select {
	case <-readyCh:
		s.setState(StateRunning)
		slog.Info("feishu: connection established")
	case err := <-errCh:
		s.setState(StateFailed)
		return err
	case <-time.After(s.readyTimeout):
		// Proceed anyway: the connection is presumed not yet established
		// and the liveness loop below notices if it never comes up.
		slog.Warn("feishu: connection not confirmed within startup timeout")
	case <-ctx.Done():
		s.setState(StateStopped)
		return ctx.Err()
	}

	return s.supervise(ctx, done, errCh)
}

// supervise polls the connection goroutine's liveness on a fixed interval
// until the running flag is cleared, the context is cancelled, or the
// goroutine exits.
func (s *supervisor) supervise(ctx context.Context, done <-chan struct{}, errCh <-chan error) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return ctx.Err()
		case <-ticker.C:
			if !s.running.Load() {
				s.setState(StateStopped)
				return nil
			}
			select {
			case <-done:
				s.setState(StateFailed)
				select {
				case err := <-errCh:
					slog.Warn("feishu: connection died unexpectedly", "err", err)
					return fmt.Errorf("%w: %v", ErrConnectionLost, err)
				default:
					slog.Warn("feishu: connection died unexpectedly")
					return ErrConnectionLost
				}
			default:
			}
		}
	}
}
