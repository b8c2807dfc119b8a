package scraper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
)

// Open starts a job by subscribing to GET /api/scrape and delivers its events
// to h from a background goroutine. The returned subscription closes itself
// before OnDone or OnError fires. Handlers must not call Close themselves.
func (s *Service) Open(ctx context.Context, h Handlers) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &streamSubscription{
		cancel:   cancel,
		handlers: h,
		done:     make(chan struct{}),
	}
	go sub.run(ctx, s)
	return sub
}

type streamSubscription struct {
	cancel   context.CancelFunc
	handlers Handlers

	// mu is held while a handler runs so Close cannot interleave with delivery.
	mu     sync.Mutex
	closed bool

	done chan struct{}
}

func (sub *streamSubscription) Close() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	sub.cancel()
}

// Done is closed once the reader goroutine has exited.
func (sub *streamSubscription) Done() <-chan struct{} {
	return sub.done
}

func (sub *streamSubscription) run(ctx context.Context, s *Service) {
	defer close(sub.done)
	defer sub.cancel()

	req, err := s.buildRequest(ctx, http.MethodGet, PathScrape)
	if err != nil {
		sub.fail(newStreamError("failed to create request", err))
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.streamClient.Do(req)
	if err != nil {
		sub.fail(newStreamError("failed to open progress stream", contextCause(ctx, err)))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		sub.fail(&Error{
			Type:    ErrorTypeStreamTransport,
			Message: apiErrorMessage(resp, body),
			Status:  resp.StatusCode,
		})
		return
	}

	reader := newEventReader(resp.Body)
	for {
		ev, err := reader.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			sub.fail(newStreamError("progress stream ended before completion", contextCause(ctx, err)))
			return
		}

		switch ev.Event {
		case EventDone:
			sub.finish(func() {
				if sub.handlers.OnDone != nil {
					sub.handlers.OnDone()
				}
			})
			return
		case EventError:
			sub.fail(newServerSignalError(eventData(ev)))
			return
		case EventMessage:
			if !sub.deliver(eventData(ev)) {
				return
			}
		}
	}
}

func (sub *streamSubscription) deliver(text string) bool {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return false
	}
	if sub.handlers.OnLine != nil {
		sub.handlers.OnLine(text)
	}
	return true
}

// finish closes the subscription and then runs the terminal callback, unless
// someone else closed it first.
func (sub *streamSubscription) finish(terminal func()) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	sub.cancel()
	terminal()
}

func (sub *streamSubscription) fail(err error) {
	sub.finish(func() {
		if sub.handlers.OnError != nil {
			sub.handlers.OnError(err)
		}
	})
}

// contextCause prefers the context error when the request context ended, so
// a stream timeout is reported as such rather than as a generic read error.
func contextCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
