package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
)

// Center owns one queue and runner per user and fans their events out
// through a Hub.
type Center struct {
	mu     sync.Mutex
	queues map[string]*userQueue
	hub    *Hub
	opts   Options
	cron   *cron.Cron
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type userQueue struct {
	queue  *Queue
	runner *Runner
	cancel context.CancelFunc
}

// NewCenter starts a center. pruneSchedule is a cron spec for dropping idle
// queues; empty disables pruning.
func NewCenter(log *slog.Logger, hub *Hub, opts Options, pruneSchedule string) (*Center, error) {
	if log == nil {
		log = slog.Default()
	}
	if hub == nil {
		hub = NewHub()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Center{
		queues: map[string]*userQueue{},
		hub:    hub,
		opts:   opts,
		logger: log.With(slog.String("service", "notify")),
		ctx:    ctx,
		cancel: cancel,
	}
	if strings.TrimSpace(pruneSchedule) != "" {
		c.cron = cron.New()
		if _, err := c.cron.AddFunc(pruneSchedule, func() { c.Prune() }); err != nil {
			cancel()
			return nil, fmt.Errorf("invalid prune schedule %q: %w", pruneSchedule, err)
		}
		c.cron.Start()
	}
	return c, nil
}

// Add validates t and queues it for userID.
func (c *Center) Add(userID string, t Toast) (Toast, error) {
	if strings.TrimSpace(t.Message) == "" {
		return Toast{}, ErrEmptyMessage
	}
	typ, err := ParseType(string(t.Type))
	if err != nil {
		return Toast{}, err
	}
	t.Type = typ

	// Held across Add so Prune cannot drop a queue that is about to fill.
	c.mu.Lock()
	uq, err := c.queueLocked(userID, true)
	if err != nil {
		c.mu.Unlock()
		return Toast{}, err
	}
	added, ev := uq.queue.Add(t)
	c.mu.Unlock()

	ev.UserID = userID
	c.hub.Publish(ev)
	uq.runner.Wake()
	return added, nil
}

// Dismiss starts the exit transition of toast id. It reports false when the
// toast is unknown or already leaving.
func (c *Center) Dismiss(userID, id string) bool {
	uq, _ := c.queueFor(userID, false)
	if uq == nil {
		return false
	}
	ev, ok := uq.queue.Dismiss(id)
	if !ok {
		return false
	}
	ev.UserID = userID
	c.hub.Publish(ev)
	uq.runner.Wake()
	return true
}

// List returns userID's visible and exiting toasts in queue order.
func (c *Center) List(userID string) []Toast {
	uq, _ := c.queueFor(userID, false)
	if uq == nil {
		return []Toast{}
	}
	return uq.queue.List()
}

// Subscribe streams userID's toast events until cancel is called.
func (c *Center) Subscribe(userID string) (<-chan Event, func()) {
	_, ch, cancel := c.hub.Subscribe(userID, 0)
	return ch, cancel
}

// Prune stops and drops queues that are empty and have no subscribers.
func (c *Center) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	pruned := 0
	for userID, uq := range c.queues {
		if uq.queue.Len() > 0 || c.hub.Subscribers(userID) > 0 {
			continue
		}
		uq.cancel()
		delete(c.queues, userID)
		pruned++
	}
	if pruned > 0 {
		c.logger.Debug("pruned idle toast queues", slog.Int("count", pruned))
	}
	return pruned
}

// Close stops pruning and every runner.
func (c *Center) Close() {
	if c.cron != nil {
		<-c.cron.Stop().Done()
	}
	c.cancel()
	c.wg.Wait()

	c.mu.Lock()
	c.queues = map[string]*userQueue{}
	c.mu.Unlock()
}

func (c *Center) queueFor(userID string, create bool) (*userQueue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queueLocked(userID, create)
}

func (c *Center) queueLocked(userID string, create bool) (*userQueue, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if uq, ok := c.queues[userID]; ok {
		return uq, nil
	}
	if !create {
		return nil, nil
	}
	if c.ctx.Err() != nil {
		return nil, fmt.Errorf("notification center closed")
	}

	q := NewQueue(c.opts)
	ctx, cancel := context.WithCancel(c.ctx)
	uq := &userQueue{
		queue: q,
		runner: NewRunner(q, func(ev Event) {
			ev.UserID = userID
			c.hub.Publish(ev)
		}),
		cancel: cancel,
	}
	c.queues[userID] = uq
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		uq.runner.Run(ctx)
	}()
	return uq, nil
}
