package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsInPostOrder(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []int
	done := make(chan struct{})
	for i := 0; i < 100; i++ {
		i := i
		loop.Post(func() {
			got = append(got, i)
			if i == 99 {
				close(done)
			}
		})
	}

	go loop.Run(ctx)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not drain")
	}
	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestLoopPostFromCallbackDoesNotBlock(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	loop.Post(func() {
		loop.Post(func() { close(done) })
	})
	go loop.Run(ctx)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("nested post never ran")
	}
}

func TestLoopPumpDeliversSerially(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	delivered := make(chan func(), 10)
	go loop.Pump(ctx, func(fn func()) { delivered <- fn })

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		loop.Post(func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		})
	}

	for i := 0; i < 3; i++ {
		select {
		case fn := <-delivered:
			fn()
		case <-time.After(5 * time.Second):
			t.Fatal("pump stalled")
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestLoopDropsPostsAfterStop(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	ran := false
	loop.Post(func() { ran = true })
	assert.False(t, ran)
	assert.Nil(t, loop.next())
}
