package transport

import (
	"testing"
	"time"
)

// 120 bpm at 960 ppq is 1920 ticks per second.
func testDriver() (*Driver, *Cell, *time.Time) {
	cell := &Cell{}
	d := NewDriver(cell, 120, 960, 1.0)
	now := time.Unix(1000, 0)
	d.now = func() time.Time { return now }
	return d, cell, &now
}

func TestDriverAdvancesWhilePlaying(t *testing.T) {
	d, cell, now := testDriver()

	d.Update()
	if cell.Tick() != 0 || cell.Status() != Stopped {
		t.Fatal("driver advanced while stopped")
	}

	d.Play()
	*now = now.Add(time.Second)
	d.Update()
	if cell.Tick() != 1920 {
		t.Log("tick =", cell.Tick(), "expected 1920")
		t.Fail()
	}
	if cell.Status() != Playing {
		t.Fail()
	}
}

func TestDriverPauseHoldsTick(t *testing.T) {
	d, cell, now := testDriver()
	d.Play()
	*now = now.Add(500 * time.Millisecond)
	d.Pause()

	held := cell.Tick()
	if held != 960 {
		t.Log("tick at pause =", held)
		t.Fail()
	}
	*now = now.Add(5 * time.Second)
	d.Update()
	if cell.Tick() != held {
		t.Log("tick advanced while paused:", cell.Tick())
		t.Fail()
	}
	if cell.Status() != Paused {
		t.Fail()
	}

	// Resuming continues from the held tick
	d.Play()
	*now = now.Add(time.Second)
	d.Update()
	if cell.Tick() != held+1920 {
		t.Log("tick after resume =", cell.Tick())
		t.Fail()
	}
}

func TestDriverStopResets(t *testing.T) {
	d, cell, now := testDriver()
	d.Play()
	*now = now.Add(time.Second)
	d.Update()
	d.Stop()
	if cell.Tick() != 0 || cell.Status() != Stopped {
		t.Fatal("stop did not reset", cell.Tick(), cell.Status())
	}
}

func TestDriverSeek(t *testing.T) {
	d, cell, now := testDriver()
	d.Seek(5000)
	if cell.Tick() != 5000 {
		t.Fail()
	}
	d.Play()
	*now = now.Add(time.Second)
	d.Update()
	if cell.Tick() != 5000+1920 {
		t.Log("tick after seek+play =", cell.Tick())
		t.Fail()
	}
	d.Seek(-10)
	if cell.Tick() != 0 {
		t.Log("negative seek must clamp to 0, got", cell.Tick())
		t.Fail()
	}
}

func TestDriverLoopRegionWraps(t *testing.T) {
	d, cell, now := testDriver()
	d.SetLoop(960, 2880)
	d.Play()
	*now = now.Add(2 * time.Second) // 3840 ticks, past the loop end
	d.Update()
	if cell.Tick() != 960 {
		t.Log("expected wrap to 960, got", cell.Tick())
		t.Fail()
	}
}

func TestDriverRate(t *testing.T) {
	cell := &Cell{}
	d := NewDriver(cell, 120, 960, 2.0)
	now := time.Unix(1000, 0)
	d.now = func() time.Time { return now }

	d.Play()
	now = now.Add(time.Second)
	d.Update()
	if cell.Tick() != 3840 {
		t.Log("tick at double rate =", cell.Tick())
		t.Fail()
	}
}
