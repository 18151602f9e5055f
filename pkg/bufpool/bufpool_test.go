package bufpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsSize(t *testing.T) {
	assert.Equal(t, DefaultSize, New(0).Size())
	assert.Equal(t, DefaultSize, New(-5).Size())
	assert.Equal(t, 1024, New(1024).Size())
}

func TestGetReturnsFullBuffer(t *testing.T) {
	p := New(512)
	buf := p.Get()
	assert.Len(t, buf, 512)
	assert.Equal(t, 512, cap(buf))
}

func TestPutRestoresLength(t *testing.T) {
	p := New(256)
	buf := p.Get()
	p.Put(buf[:10])

	again := p.Get()
	assert.Len(t, again, 256)
}

func TestPutForeignSliceIgnored(t *testing.T) {
	p := New(256)
	p.Put(make([]byte, 100))
	p.Put(nil)
	assert.Len(t, p.Get(), 256)
}

func TestSharedPool(t *testing.T) {
	buf := Get()
	assert.Len(t, buf, DefaultSize)
	Put(buf)
}

func TestConcurrentUse(t *testing.T) {
	p := New(64)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n byte) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b := p.Get()
				b[0] = n
				p.Put(b)
			}
		}(byte(i))
	}
	wg.Wait()
}
