// Package shutdown provides the process-wide stop request observed by the
// acceptor loop.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
)

// Signal is a one-way latch. Once triggered it stays triggered. It stops the
// acceptor from admitting new connections; it does not cancel sessions that
// are already running.
type Signal struct {
	fired  atomic.Bool
	once   sync.Once
	done   chan struct{}
	mu     sync.Mutex
	reason string
}

// New returns an untriggered Signal.
func New() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Trigger requests shutdown. Only the first call records its reason.
func (s *Signal) Trigger(reason string) {
	s.once.Do(func() {
		s.mu.Lock()
		s.reason = reason
		s.mu.Unlock()
		s.fired.Store(true)
		close(s.done)
	})
}

// Triggered reports whether Trigger has been called.
func (s *Signal) Triggered() bool {
	return s.fired.Load()
}

// Done is closed when the signal fires.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Reason returns the reason passed to the first Trigger call.
func (s *Signal) Reason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// NotifyOS triggers s when one of sigs is delivered to the process. The
// handler is installed before NotifyOS returns; calling stop removes it.
func (s *Signal) NotifyOS(sigs ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	quit := make(chan struct{})
	var once sync.Once
	go func() {
		select {
		case sig := <-ch:
			s.Trigger("signal " + sig.String())
		case <-s.done:
		case <-quit:
		}
	}()

	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(quit)
		})
	}
}
