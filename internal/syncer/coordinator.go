// internal/syncer/coordinator.go
package syncer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kladdkaka/internal/bus"
	"github.com/shrimpsizemoose/kladdkaka/internal/metrics"
	"github.com/shrimpsizemoose/kladdkaka/internal/store"
)

// RenderFunc receives the freshly fetched view, keyed by collection.
type RenderFunc func(view map[string][]store.Document)

// Coordinator keeps one page's view fresh against the shared store. It
// re-fetches on visibility regain, on a fallback timer, and on change
// events from other pages; its own emissions are ignored. Syncs never run
// concurrently: triggers arriving mid-sync coalesce into at most one
// follow-up pass.
type Coordinator struct {
	id          string
	engine      store.Engine
	bus         *bus.Bus
	collections []string
	render      RenderFunc
	interval    time.Duration

	mu      sync.Mutex
	syncing bool
	pending bool
	visible bool

	stop        chan struct{}
	unsubscribe func()
}

func New(engine store.Engine, b *bus.Bus, collections []string, render RenderFunc, interval time.Duration) *Coordinator {
	return &Coordinator{
		id:          uuid.NewString(),
		engine:      engine,
		bus:         b,
		collections: collections,
		render:      render,
		interval:    interval,
		visible:     true,
		stop:        make(chan struct{}),
	}
}

// ID is this page's identity, stamped on every emission it originates.
func (c *Coordinator) ID() string {
	return c.id
}

func (c *Coordinator) Start() {
	c.unsubscribe = c.bus.Subscribe(c.onEvent)

	if c.interval > 0 {
		go c.timerLoop()
	}
}

func (c *Coordinator) Stop() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	close(c.stop)
}

// Publish announces a local write on this page's behalf.
func (c *Coordinator) Publish(collection string) {
	c.bus.Emit(collection, c.id)
}

// SetVisible mirrors the page's visibility; the hidden-to-visible
// transition triggers a refresh.
func (c *Coordinator) SetVisible(visible bool) {
	c.mu.Lock()
	wake := visible && !c.visible
	c.visible = visible
	c.mu.Unlock()

	if wake {
		c.Request("visibility")
	}
}

func (c *Coordinator) onEvent(ev bus.Event) {
	if ev.Source == c.id {
		return
	}
	if !c.watches(ev.Collection) {
		return
	}
	c.Request("event")
}

func (c *Coordinator) watches(collection string) bool {
	for _, col := range c.collections {
		if col == collection {
			return true
		}
	}
	return false
}

// Request asks for a sync pass. If one is in flight, a single follow-up is
// remembered; further requests collapse into it.
func (c *Coordinator) Request(trigger string) {
	c.mu.Lock()
	if c.syncing {
		c.pending = true
		c.mu.Unlock()
		return
	}
	c.syncing = true
	c.mu.Unlock()

	go c.run(trigger)
}

func (c *Coordinator) run(trigger string) {
	for {
		c.syncOnce(trigger)

		c.mu.Lock()
		if !c.pending {
			c.syncing = false
			c.mu.Unlock()
			return
		}
		c.pending = false
		c.mu.Unlock()
		trigger = "coalesced"
	}
}

// syncOnce fetches every watched collection and hands the view to the
// render callback. Failures are logged and swallowed: a missed refresh
// leaves the old view until the next trigger.
func (c *Coordinator) syncOnce(trigger string) {
	metrics.SyncsTotal.WithLabelValues(trigger).Inc()
	start := time.Now()
	defer func() {
		metrics.SyncDuration.Observe(time.Since(start).Seconds())
	}()

	view := make(map[string][]store.Document, len(c.collections))
	for _, col := range c.collections {
		docs, err := c.engine.GetAll(col)
		if err != nil {
			logger.Error.Printf("sync fetch of %s failed (trigger=%s): %v", col, trigger, err)
			return
		}
		view[col] = docs
	}

	if c.render != nil {
		c.render(view)
	}
}

func (c *Coordinator) timerLoop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.Request("timer")
		}
	}
}
