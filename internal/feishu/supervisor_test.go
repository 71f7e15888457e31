package feishu

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubTransport lets tests script the connection goroutine's behaviour.
type stubTransport struct {
	run func(ctx context.Context, ready func()) error
}

func (s *stubTransport) Run(ctx context.Context, ready func()) error {
	return s.run(ctx, ready)
}

func newTestSupervisor() *supervisor {
	s := newSupervisor()
	s.readyTimeout = 200 * time.Millisecond
	s.pollInterval = 5 * time.Millisecond
	return s
}

func waitForState(t *testing.T, s *supervisor, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("supervisor never reached state %v, stuck at %v", want, s.State())
}

func TestSupervisor_ReadyThenStop(t *testing.T) {
	s := newTestSupervisor()
	release := make(chan struct{})
	tr := &stubTransport{run: func(ctx context.Context, ready func()) error {
		ready()
		<-release
		return nil
	}}
	defer close(release)

	result := make(chan error, 1)
	go func() { result <- s.Run(context.Background(), tr) }()

	waitForState(t, s, StateRunning)
	s.Stop()

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("expected nil after Stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if got := s.State(); got != StateStopped {
		t.Errorf("expected state stopped, got %v", got)
	}
}

func TestSupervisor_StartupErrorReturned(t *testing.T) {
	s := newTestSupervisor()
	wantErr := errors.New("dial refused")
	tr := &stubTransport{run: func(ctx context.Context, ready func()) error {
		return wantErr
	}}

	err := s.Run(context.Background(), tr)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected startup error to surface, got %v", err)
	}
	if got := s.State(); got != StateFailed {
		t.Errorf("expected state failed, got %v", got)
	}
}

func TestSupervisor_ConnectionDeathDetected(t *testing.T) {
	s := newTestSupervisor()
	tr := &stubTransport{run: func(ctx context.Context, ready func()) error {
		ready()
		time.Sleep(20 * time.Millisecond)
		return errors.New("connection reset")
	}}

	err := s.Run(context.Background(), tr)
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("expected ErrConnectionLost, got %v", err)
	}
	if got := s.State(); got != StateFailed {
		t.Errorf("expected state failed, got %v", got)
	}
}

func TestSupervisor_ReadyTimeoutProceeds(t *testing.T) {
	s := newTestSupervisor()
	s.readyTimeout = 20 * time.Millisecond
	release := make(chan struct{})
	tr := &stubTransport{run: func(ctx context.Context, ready func()) error {
		// Never signals ready: the connection is presumed not yet established.
		<-release
		return nil
	}}
	defer close(release)

	result := make(chan error, 1)
	go func() { result <- s.Run(context.Background(), tr) }()

	// The rendezvous times out and the supervise loop takes over; a Stop
	// must still wind it down cleanly.
	waitForState(t, s, StateStarting)
	time.Sleep(40 * time.Millisecond)
	s.Stop()

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("expected nil after Stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestSupervisor_SecondRunRejected(t *testing.T) {
	s := newTestSupervisor()
	release := make(chan struct{})
	tr := &stubTransport{run: func(ctx context.Context, ready func()) error {
		ready()
		<-release
		return nil
	}}
	defer close(release)

	go func() { _ = s.Run(context.Background(), tr) }()
	waitForState(t, s, StateRunning)

	if err := s.Run(context.Background(), tr); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
	s.Stop()
}

func TestSupervisor_RestartAfterStop(t *testing.T) {
	s := newTestSupervisor()
	release := make(chan struct{})
	tr := &stubTransport{run: func(ctx context.Context, ready func()) error {
		ready()
		<-release
		return nil
	}}
	defer close(release)

	for round := 0; round < 2; round++ {
		result := make(chan error, 1)
		go func() { result <- s.Run(context.Background(), tr) }()
		waitForState(t, s, StateRunning)
		s.Stop()
		select {
		case err := <-result:
			if err != nil {
				t.Fatalf("round %d: expected nil after Stop, got %v", round, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("round %d: Run did not return after Stop", round)
		}
	}
}

func TestSupervisor_ContextCancellation(t *testing.T) {
	s := newTestSupervisor()
	release := make(chan struct{})
	tr := &stubTransport{run: func(ctx context.Context, ready func()) error {
		ready()
		<-release
		return nil
	}}
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- s.Run(ctx, tr) }()

	waitForState(t, s, StateRunning)
	cancel()

	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if got := s.State(); got != StateStopped {
		t.Errorf("expected state stopped, got %v", got)
	}
}

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateIdle:     "idle",
		StateStarting: "starting",
		StateRunning:  "running",
		StateFailed:   "failed",
		StateStopped:  "stopped",
		State(99):     "unknown",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", st, got, want)
		}
	}
}
