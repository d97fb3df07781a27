package loop

import (
	"sync"
	"time"

	"git.lost.host/meutraa/glow/internal/governor"
	"git.lost.host/meutraa/glow/internal/interval"
	"git.lost.host/meutraa/glow/internal/patch"
	"git.lost.host/meutraa/glow/internal/scene"
	"git.lost.host/meutraa/glow/internal/transport"
)

type State int

const (
	Stopped State = iota
	Running
)

// framePeriod is the cadence of the frame source itself, the stand-in
// for a platform animation frame callback. The governor gates actual
// work down to the profile cadence.
const framePeriod = 4 * time.Millisecond

// Stats is a snapshot of loop counters for the status line.
type Stats struct {
	Active      int
	Steps       uint64
	FrameSkips  uint64
	BudgetSkips uint64
}

// Controller drives highlight updates: every admitted frame it reads
// the live playback position, queries the interval index, diffs against
// the previous active set and toggles markers on the scene. It owns the
// previous set exclusively; the set is never a source of truth and is
// always recomputable from the cell and the index.
type Controller struct {
	cell    *transport.Cell
	index   func() *interval.Index
	gov     *governor.Governor
	surface scene.Surface
	pinned  func(id string) bool
	now     func() time.Time

	mu       sync.Mutex
	state    State
	previous map[string]struct{}
	buf      []string
	steps    uint64
	stop     chan struct{}
	wg       sync.WaitGroup
}

func New(
	cell *transport.Cell,
	index func() *interval.Index,
	gov *governor.Governor,
	surface scene.Surface,
	pinned func(id string) bool,
) *Controller {
	return &Controller{
		cell:     cell,
		index:    index,
		gov:      gov,
		surface:  surface,
		pinned:   pinned,
		now:      time.Now,
		previous: map[string]struct{}{},
	}
}

// Start begins self-scheduling frame steps. Calling Start on a running
// controller is a no-op.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Running {
		return
	}
	c.state = Running
	c.stop = make(chan struct{})
	c.wg.Add(1)
	go c.frames(c.stop)
}

func (c *Controller) frames(stop chan struct{}) {
	defer c.wg.Done()
	t := time.NewTicker(framePeriod)
	defer t.Stop()
	for {
		// The next frame is already scheduled by the ticker before the
		// step runs, so a slow step never stalls scheduling.
		select {
		case <-stop:
			return
		case now := <-t.C:
			c.step(now)
		}
	}
}

// Stop tears the loop down. It is synchronous: once it returns, no
// further step mutates anything, even if a frame callback was already
// in flight.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state != Running {
		c.mu.Unlock()
		return
	}
	c.state = Stopped
	close(c.stop)
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) step(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Running {
		// A late frame after teardown must not fire
		return
	}
	if !c.gov.Admit(now) {
		return
	}
	start := c.now()
	c.apply(c.activeNow())
	c.steps++
	c.gov.Observe(c.now().Sub(start))
}

// activeNow recomputes the active set from the live position reference.
// Stopped playback has no sounding notes.
func (c *Controller) activeNow() []string {
	c.buf = c.buf[:0]
	if c.cell.Status() == transport.Stopped {
		return c.buf
	}
	c.buf = c.index().FindActiveInto(c.cell.Tick(), c.buf)
	return c.buf
}

func (c *Controller) apply(current []string) {
	p := patch.Diff(c.previous, current)
	if !p.Unchanged {
		for id := range p.Added {
			// Pinned emphasis wins over the transient marker
			if !c.pinned(id) {
				c.surface.Mark(id, scene.Playing)
			}
		}
		for id := range p.Removed {
			if !c.pinned(id) {
				c.surface.Unmark(id, scene.Playing)
			}
		}
	}

	// The previous set tracks the computed set even where mutation was
	// skipped for a pinned id, so reapply after an unpin rebuild is
	// consistent with the next diff.
	for id := range c.previous {
		delete(c.previous, id)
	}
	for _, id := range current {
		c.previous[id] = struct{}{}
	}
}

// Reapply rebuilds highlight state after a structural rebuild destroyed
// every marker. The stale previous set refers to elements that no
// longer exist, so the active set is recomputed fresh and applied to
// the new elements, and the previous set reset to match.
func (c *Controller) Reapply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reapply()
}

func (c *Controller) reapply() {
	for id := range c.previous {
		delete(c.previous, id)
	}
	for _, id := range c.activeNow() {
		if !c.pinned(id) {
			c.surface.Mark(id, scene.Playing)
		}
		c.previous[id] = struct{}{}
	}
}

// Rebuild runs the given structural rebuild with frame steps held off
// and reapplies highlight state before the next one can run. The gate
// owner calls this instead of ever touching the per-frame step.
func (c *Controller) Rebuild(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
	c.reapply()
}

// Exclusive runs fn with frame steps held off, for host work that
// touches the same scene the step mutates.
func (c *Controller) Exclusive(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Active:      len(c.previous),
		Steps:       c.steps,
		FrameSkips:  c.gov.FrameSkips,
		BudgetSkips: c.gov.BudgetSkips,
	}
}
