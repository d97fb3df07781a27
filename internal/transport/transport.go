package transport

import (
	"sync"
	"sync/atomic"
	"time"
)

type Status int32

const (
	Stopped Status = iota
	Playing
	Paused
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "stopped"
}

// Cell is the live playback position. The clock driver writes it, the
// highlight loop reads it by reference every frame. It is never
// snapshotted; a reader always sees the current tick even while its own
// re-render is suppressed.
type Cell struct {
	tick   int64
	status int32
}

func (c *Cell) Tick() int64 {
	return atomic.LoadInt64(&c.tick)
}

func (c *Cell) Status() Status {
	return Status(atomic.LoadInt32(&c.status))
}

func (c *Cell) Set(tick int64) {
	atomic.StoreInt64(&c.tick, tick)
}

func (c *Cell) SetStatus(s Status) {
	atomic.StoreInt32(&c.status, int32(s))
}

// Driver advances a Cell from the wall clock at a fixed tempo. Audio is
// played by a separate owner; the driver never blocks on it and dropped
// visual frames never reach it.
type Driver struct {
	cell   *Cell
	ppq    uint32
	bpm    float64
	rate   float64
	period time.Duration
	now    func() time.Time

	mu        sync.Mutex
	anchor    time.Time
	base      int64
	loopStart int64
	loopEnd   int64
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewDriver(cell *Cell, bpm float64, ppq uint32, rate float64) *Driver {
	if bpm <= 0 {
		bpm = 120
	}
	if rate <= 0 {
		rate = 1.0
	}
	return &Driver{
		cell:   cell,
		ppq:    ppq,
		bpm:    bpm,
		rate:   rate,
		period: time.Millisecond,
		now:    time.Now,
	}
}

// Start spawns the update goroutine. Close stops it.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if nil != d.done {
		return
	}
	d.done = make(chan struct{})
	d.wg.Add(1)
	go func(done chan struct{}) {
		defer d.wg.Done()
		t := time.NewTicker(d.period)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				d.Update()
			}
		}
	}(d.done)
}

func (d *Driver) Close() {
	d.mu.Lock()
	done := d.done
	d.done = nil
	d.mu.Unlock()
	if nil != done {
		close(done)
		d.wg.Wait()
	}
}

// Update recomputes the current tick and writes it to the cell. The
// goroutine started by Start calls this every period.
func (d *Driver) Update() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cell.Status() != Playing {
		return
	}
	tick := d.tickAt(d.now())
	if d.loopEnd > d.loopStart && tick >= d.loopEnd {
		d.base = d.loopStart
		d.anchor = d.now()
		tick = d.loopStart
	}
	d.cell.Set(tick)
}

func (d *Driver) tickAt(t time.Time) int64 {
	perSecond := d.bpm / 60.0 * d.rate * float64(d.ppq)
	return d.base + int64(t.Sub(d.anchor).Seconds()*perSecond)
}

func (d *Driver) Play() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cell.Status() == Playing {
		return
	}
	d.anchor = d.now()
	d.cell.SetStatus(Playing)
}

func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cell.Status() != Playing {
		return
	}
	d.base = d.tickAt(d.now())
	d.cell.Set(d.base)
	d.cell.SetStatus(Paused)
}

func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.base = 0
	d.cell.Set(0)
	d.cell.SetStatus(Stopped)
}

func (d *Driver) Seek(tick int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if tick < 0 {
		tick = 0
	}
	d.base = tick
	d.anchor = d.now()
	d.cell.Set(tick)
}

// SetLoop makes playback wrap from end back to start. A zero region
// disables wrapping.
func (d *Driver) SetLoop(start, end int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loopStart, d.loopEnd = start, end
}
