//go:build unix

package shutdown

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyOSStop(t *testing.T) {
	s := New()
	stop := s.NotifyOS(syscall.SIGUSR2)
	stop()
	stop()
	assert.False(t, s.Triggered())
}

func TestNotifyOSTriggers(t *testing.T) {
	s := New()
	stop := s.NotifyOS(syscall.SIGUSR1)
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("signal not observed")
	}
	assert.Equal(t, "signal user defined signal 1", s.Reason())
}
