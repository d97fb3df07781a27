package governor

import (
	"runtime"
	"time"
)

// Profile selects the frame cadence and the wall-clock budget the
// per-frame visual update step may spend before being skipped.
type Profile struct {
	Name          string
	FrameInterval time.Duration
	Budget        time.Duration
}

var (
	Fast        = Profile{Name: "fast", FrameInterval: 16 * time.Millisecond, Budget: 8 * time.Millisecond}
	Constrained = Profile{Name: "constrained", FrameInterval: 33 * time.Millisecond, Budget: 4 * time.Millisecond}
)

// Resolve maps a profile name to a Profile once at startup. "auto"
// picks by logical CPU count; there is no runtime probing after this.
func Resolve(name string) Profile {
	switch name {
	case "fast":
		return Fast
	case "constrained":
		return Constrained
	}
	if runtime.NumCPU() >= 4 {
		return Fast
	}
	return Constrained
}

// Governor decides per candidate frame whether the visual update step
// runs at all. Skipped frames leave no backlog; the next admitted frame
// re-queries live state from scratch.
type Governor struct {
	profile Profile
	alpha   float64

	last     time.Time
	estimate time.Duration

	FrameSkips  uint64
	BudgetSkips uint64
}

func New(profile Profile) *Governor {
	return &Governor{profile: profile, alpha: 0.25}
}

func (g *Governor) Profile() Profile {
	return g.profile
}

// Admit reports whether this frame's visual work should run. A frame is
// skipped when less than the profile cadence has elapsed since the last
// admitted frame, or when the rolling cost estimate of the update step
// exceeds the budget.
func (g *Governor) Admit(now time.Time) bool {
	if !g.last.IsZero() && now.Sub(g.last) < g.profile.FrameInterval {
		g.FrameSkips++
		return false
	}
	if g.estimate > g.profile.Budget {
		g.BudgetSkips++
		// Decay the estimate so a skip streak always ends.
		g.estimate = time.Duration(float64(g.estimate) * (1 - g.alpha))
		return false
	}
	g.last = now
	return true
}

// Observe folds the measured duration of an admitted update step into
// the rolling estimate.
func (g *Governor) Observe(d time.Duration) {
	if g.estimate == 0 {
		g.estimate = d
		return
	}
	g.estimate = time.Duration(g.alpha*float64(d) + (1-g.alpha)*float64(g.estimate))
}
