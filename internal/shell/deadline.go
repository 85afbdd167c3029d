package shell

import (
	"context"
	"sync"
	"time"
)

type queryContextKey struct{}

// queryContext is a command context whose timeout can be paused while the
// session waits on the user, such as at the page prompt.
type queryContext struct {
	parent context.Context
	done   chan struct{}

	mu        sync.Mutex
	err       error
	timer     *time.Timer
	remaining time.Duration
	started   time.Time
	paused    bool
}

// withQueryTimeout returns a context that expires after d of unpaused time
// with context.DeadlineExceeded, or ends with parent.
func withQueryTimeout(parent context.Context, d time.Duration) (*queryContext, context.CancelFunc) {
	c := &queryContext{
		parent:    parent,
		done:      make(chan struct{}),
		remaining: d,
		started:   time.Now(),
	}
	c.mu.Lock()
	c.timer = time.AfterFunc(d, func() { c.finish(context.DeadlineExceeded) })
	c.mu.Unlock()
	stop := context.AfterFunc(parent, func() { c.finish(parent.Err()) })
	return c, func() {
		stop()
		c.finish(context.Canceled)
	}
}

func (c *queryContext) Deadline() (time.Time, bool) {
	return c.parent.Deadline()
}

func (c *queryContext) Done() <-chan struct{} {
	return c.done
}

func (c *queryContext) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *queryContext) Value(key any) any {
	if key == (queryContextKey{}) {
		return c
	}
	return c.parent.Value(key)
}

func (c *queryContext) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return
	}
	c.err = err
	c.timer.Stop()
	close(c.done)
}

// pause stops the clock. Time until resume is not counted.
func (c *queryContext) pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused || c.err != nil {
		return
	}
	c.paused = true
	if c.timer.Stop() {
		c.remaining -= time.Since(c.started)
	}
}

func (c *queryContext) resume() {
	c.mu.Lock()
	if !c.paused || c.err != nil {
		c.mu.Unlock()
		return
	}
	c.paused = false
	c.started = time.Now()
	remaining := c.remaining
	if remaining > 0 {
		c.timer.Reset(remaining)
	}
	c.mu.Unlock()

	if remaining <= 0 {
		c.finish(context.DeadlineExceeded)
	}
}

// pauseTimeout stops the command timeout of ctx, if any, and returns the
// function that restarts it.
func pauseTimeout(ctx context.Context) func() {
	c, ok := ctx.Value(queryContextKey{}).(*queryContext)
	if !ok {
		return func() {}
	}
	c.pause()
	return c.resume
}
