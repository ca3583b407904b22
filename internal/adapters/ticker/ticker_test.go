package ticker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_TicksUntilStopped(t *testing.T) {
	var count atomic.Int32
	fired := make(chan struct{}, 16)

	stop := New().Start(5*time.Millisecond, func() {
		count.Add(1)
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("tick source never fired")
	}

	stop()
	stop() // idempotent

	// Allow an in-flight tick to land, then verify no further growth.
	time.Sleep(20 * time.Millisecond)
	after := count.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, count.Load(), "ticks continued after stop")
}

func TestManual_FireAndStop(t *testing.T) {
	m := NewManual()
	var a, b int

	stopA := m.Start(time.Second, func() { a++ })
	stopB := m.Start(time.Second, func() { b++ })
	require.Equal(t, 2, m.Live())

	m.Fire()
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	stopA()
	m.Fire()
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 1, m.Live())

	stopB()
	stopB()
	assert.Equal(t, 0, m.Live())
	assert.Equal(t, 2, m.Starts())
}
