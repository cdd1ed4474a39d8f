package worker

import (
	"context"
	"errors"
	"log"
	"sync"
)

// ErrStopped is reported for requests submitted after Stop.
var ErrStopped = errors.New("worker stopped")

type job struct {
	ctx   context.Context
	req   Request
	reply chan Response
}

// Worker owns a single goroutine that processes queued requests in order.
// Each request is finished before the next one is taken.
type Worker struct {
	jobs    chan job
	done    chan struct{}
	stopped chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a worker whose queue holds up to queue pending requests.
func New(queue int) *Worker {
	return &Worker{
		jobs:    make(chan job, queue),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start launches the processing goroutine. It exits when ctx is done or
// Stop is called. Only the first call has an effect, and a call after Stop
// does nothing.
func (w *Worker) Start(ctx context.Context) {
	w.startOnce.Do(func() { w.run(ctx) })
}

func (w *Worker) run(ctx context.Context) {
	go func() {
		defer close(w.stopped)
		for {
			select {
			case j := <-w.jobs:
				j.reply <- Handle(j.ctx, j.req)
			case <-w.done:
				log.Println("worker stopped")
				return
			case <-ctx.Done():
				log.Println("worker stopped:", ctx.Err())
				return
			}
		}
	}()
}

// Submit queues req and waits for its response. Cancellation of ctx and a
// stopped worker are reported as error responses.
func (w *Worker) Submit(ctx context.Context, req Request) Response {
	j := job{ctx: ctx, req: req, reply: make(chan Response, 1)}

	select {
	case w.jobs <- j:
	case <-w.stopped:
		return errorResponse(ErrStopped)
	case <-w.done:
		return errorResponse(ErrStopped)
	case <-ctx.Done():
		return errorResponse(ctx.Err())
	}

	select {
	case resp := <-j.reply:
		return resp
	case <-w.stopped:
		return errorResponse(ErrStopped)
	case <-ctx.Done():
		return errorResponse(ctx.Err())
	}
}

// Stop signals the goroutine to exit and waits for it. On a worker that was
// never started it returns at once.
func (w *Worker) Stop() {
	// claims startOnce when Start has not run, so nothing will close stopped
	w.startOnce.Do(func() { close(w.stopped) })
	w.stopOnce.Do(func() { close(w.done) })
	<-w.stopped
}
