package notify

import (
	"context"
	"time"
)

// Runner drives a Queue on the wall clock: it sleeps until the queue's next
// deadline, advances it and hands every resulting event to publish.
type Runner struct {
	queue   *Queue
	publish func(Event)
	wake    chan struct{}
}

// NewRunner binds q to publish. A nil publish discards events. The runner
// does nothing until Run is called.
func NewRunner(q *Queue, publish func(Event)) *Runner {
	if publish == nil {
		publish = func(Event) {}
	}
	return &Runner{queue: q, publish: publish, wake: make(chan struct{}, 1)}
}

// Wake makes Run re-read the next deadline. Call it after Add or Dismiss.
func (r *Runner) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		for _, ev := range r.queue.Advance() {
			r.publish(ev)
		}
		if next, ok := r.queue.Next(); ok {
			wait := next.Sub(r.queue.now())
			if wait < 0 {
				wait = 0
			}
			timer.Reset(wait)
		} else {
			timer.Stop()
		}

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-r.wake:
		}
	}
}
