package jobs

import (
	"context"
	"sync"
)

// Dispatcher serializes controller callbacks onto one logical execution
// context. Post must not block the caller and must preserve order. Go runs
// blocking work, such as the result fetch, off that context.
type Dispatcher interface {
	Post(fn func())
	Go(fn func())
}

// Loop is an unbounded FIFO Dispatcher. Callbacks run either on the Run
// goroutine or are handed one at a time to a deliver func via Pump, which is
// how the TUI moves them onto the bubbletea update loop.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
}

func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn. Posting to a stopped loop drops fn.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) Go(fn func()) {
	go fn()
}

// Run executes posted callbacks in order until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	return l.Pump(ctx, func(fn func()) { fn() })
}

// Pump hands posted callbacks to deliver in order until ctx is done.
// deliver may block; later callbacks wait behind it.
func (l *Loop) Pump(ctx context.Context, deliver func(fn func())) error {
	defer l.stop()
	for {
		for {
			fn := l.next()
			if fn == nil {
				break
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			deliver(fn)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn
}

func (l *Loop) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.queue = nil
}
