package shutdown

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalStartsClear(t *testing.T) {
	s := New()
	assert.False(t, s.Triggered())
	assert.Empty(t, s.Reason())

	select {
	case <-s.Done():
		t.Fatal("done closed before trigger")
	default:
	}
}

func TestTriggerLatches(t *testing.T) {
	s := New()
	s.Trigger("console")
	s.Trigger("signal interrupt")

	assert.True(t, s.Triggered())
	assert.Equal(t, "console", s.Reason())

	select {
	case <-s.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestConcurrentTrigger(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Trigger("race")
			_ = s.Triggered()
		}()
	}
	wg.Wait()
	assert.True(t, s.Triggered())
}
