package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/log"
)

const (
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 30 * time.Second
	stopGracePeriod       = 30 * time.Second
)

// SupervisorConfig tunes the restart behavior of a Supervisor.
type SupervisorConfig struct {
	Name string
	// MaxRestarts caps how often a crashed run is restarted. Zero means
	// restart forever.
	MaxRestarts int
	// InitialBackoff is the delay before the first restart; it doubles on
	// every crash up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Supervisor keeps a long-running function alive: when the function returns
// an error or panics, it is restarted with exponential backoff, so a
// crashing API server does not take the service command down with it. A nil
// return stops the supervision loop.
type Supervisor struct {
	cfg SupervisorConfig
	run func(ctx context.Context) error

	mu       sync.Mutex
	started  bool
	cancel   context.CancelFunc
	done     chan struct{}
	restarts int
	lastErr  error
}

// NewSupervisor wraps run with crash-restart supervision.
func NewSupervisor(cfg SupervisorConfig, run func(ctx context.Context) error) *Supervisor {
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	return &Supervisor{cfg: cfg, run: run}
}

// Start launches the supervision loop. The loop ends when ctx is cancelled,
// when the function returns nil, or when MaxRestarts is exhausted.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("%s is already supervised", s.cfg.Name)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.started = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.restarts = 0
	s.lastErr = nil

	go s.loop(runCtx)
	return nil
}

// Stop cancels the supervised function and waits for the loop to finish.
// Stopping a supervisor that never started is a no-op.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
	case <-time.After(stopGracePeriod):
		return fmt.Errorf("%s did not stop within %v", s.cfg.Name, stopGracePeriod)
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	return nil
}

// LastError reports the error of the most recent run, nil after a clean exit.
func (s *Supervisor) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Supervisor) loop(ctx context.Context) {
	defer close(s.done)

	backoff := s.cfg.InitialBackoff
	for {
		err := s.guarded(ctx)

		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()

		if err == nil {
			log.Infof("%s: exited cleanly", s.cfg.Name)
			return
		}
		if ctx.Err() != nil {
			log.Infof("%s: stopped", s.cfg.Name)
			return
		}

		s.mu.Lock()
		s.restarts++
		restarts := s.restarts
		s.mu.Unlock()

		if s.cfg.MaxRestarts > 0 && restarts >= s.cfg.MaxRestarts {
			log.Errorf("%s: giving up after %d restarts, last error: %v", s.cfg.Name, restarts, err)
			return
		}

		log.Errorf("%s: crashed (%v), restart #%d in %v", s.cfg.Name, err, restarts, backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > s.cfg.MaxBackoff {
			backoff = s.cfg.MaxBackoff
		}
	}
}

// guarded runs the supervised function, converting a panic into an error so
// the loop can restart it.
func (s *Supervisor) guarded(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	return s.run(ctx)
}
