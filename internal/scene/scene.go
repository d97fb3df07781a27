package scene

import (
	"git.lost.host/meutraa/glow/internal/interval"
	"git.lost.host/meutraa/glow/internal/parser"
	"git.lost.host/meutraa/glow/internal/pin"
)

type Marker uint8

const (
	Playing Marker = 1 << iota
	Pinned
)

// playingScale is the reversible emphasis applied with the playing
// marker, centered on the element's own cell.
const playingScale = 1.15

// Element is one rendered visual primitive belonging to a note. All
// elements are created and destroyed only by Rebuild; markers and scale
// are the narrow surface mutated between rebuilds.
type Element struct {
	NoteID   string
	Row, Col int
	Glyph    rune
	Denom    int // beat length as a denominator, 4 = 1/4 beat
	Selected bool
	Scale    float64

	marks Marker
}

func (e *Element) Has(m Marker) bool {
	return e.marks&m != 0
}

// Surface is the mutation surface handed to the highlight loop. It
// toggles markers on existing elements and nothing else.
type Surface interface {
	Mark(id string, m Marker)
	Unmark(id string, m Marker)
}

// Viewport is the visible tick range and the character grid it maps to.
type Viewport struct {
	Start, End int64
	Rows, Cols int
}

// Region is a loop region in ticks; zero means none.
type Region struct {
	Start, End int64
}

// Inputs are the coarse structural inputs the reconciliation gate
// compares. The transient highlight set is deliberately not part of
// this struct.
type Inputs struct {
	Song       *parser.Song
	Viewport   Viewport
	SelectedID string
	Pins       *pin.Set
	Loop       Region
}

// ShouldRebuild is the reconciliation gate: true iff any structural
// reference differs between the previous and next inputs. Highlight
// changes can never flip it because they are not inputs.
func ShouldRebuild(prev, next Inputs) bool {
	return prev.Song != next.Song ||
		prev.Viewport != next.Viewport ||
		prev.SelectedID != next.SelectedID ||
		prev.Pins != next.Pins ||
		prev.Loop != next.Loop
}

// Scene owns the element arena and the one-directional note id to
// element index. Elements never hold references back to notes.
type Scene struct {
	elements   []*Element
	byNote     map[string][]*Element
	inputs     Inputs
	generation uint64
	onToggle   func(*Element)
}

func New() *Scene {
	return &Scene{byNote: map[string][]*Element{}}
}

// OnToggle registers the redraw hook invoked whenever a marker or the
// scale of an element actually changes.
func (s *Scene) OnToggle(fn func(*Element)) {
	s.onToggle = fn
}

func (s *Scene) Generation() uint64 {
	return s.generation
}

func (s *Scene) Elements() []*Element {
	return s.elements
}

func (s *Scene) ElementsFor(id string) []*Element {
	return s.byNote[id]
}

func (s *Scene) Inputs() Inputs {
	return s.inputs
}

// Rebuild destroys every element and creates the scene fresh from the
// structural inputs. All markers die with their elements; the caller
// must reapply highlight state afterwards.
func (s *Scene) Rebuild(in Inputs) {
	s.elements = s.elements[:0]
	s.byNote = map[string][]*Element{}
	s.inputs = in
	s.generation++

	if nil == in.Song || len(in.Song.Notes) == 0 {
		return
	}
	vp := in.Viewport
	if vp.End <= vp.Start || vp.Rows <= 0 || vp.Cols <= 0 {
		return
	}

	lo, hi := keyRange(in.Song, vp)
	for _, n := range in.Song.Notes {
		if n.End() <= vp.Start || n.Start >= vp.End {
			continue
		}
		s.place(in, &n, lo, hi)
	}
}

func keyRange(song *parser.Song, vp Viewport) (uint8, uint8) {
	lo, hi := uint8(127), uint8(0)
	for _, n := range song.Notes {
		if n.End() <= vp.Start || n.Start >= vp.End {
			continue
		}
		k := song.Keys[n.ID]
		if k < lo {
			lo = k
		}
		if k > hi {
			hi = k
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

func (s *Scene) place(in Inputs, n *interval.Note, lo, hi uint8) {
	vp := in.Viewport
	col := int((n.Start - vp.Start) * int64(vp.Cols) / (vp.End - vp.Start))
	if col < 0 {
		col = 0
	}
	if col >= vp.Cols {
		col = vp.Cols - 1
	}

	row := 0
	if hi > lo {
		row = int(hi-in.Song.Keys[n.ID]) * (vp.Rows - 1) / int(hi-lo)
	}

	denom := 4
	if ppq := int64(in.Song.TicksPerQuarter); ppq > 0 && n.Duration > 0 {
		denom = int(4 * ppq / n.Duration)
		if denom < 1 {
			denom = 1
		}
	}

	head := &Element{
		NoteID:   n.ID,
		Row:      row,
		Col:      col,
		Glyph:    '●',
		Denom:    denom,
		Selected: n.ID == in.SelectedID,
		Scale:    1.0,
	}
	s.add(head, in)

	// Longer notes get a duration tail next to the head, so a note can
	// own more than one element.
	if n.Duration >= int64(in.Song.TicksPerQuarter) && col+1 < vp.Cols {
		tail := &Element{
			NoteID:   n.ID,
			Row:      row,
			Col:      col + 1,
			Glyph:    '─',
			Denom:    denom,
			Selected: head.Selected,
			Scale:    1.0,
		}
		s.add(tail, in)
	}
}

func (s *Scene) add(e *Element, in Inputs) {
	if in.Pins.Has(e.NoteID) {
		e.marks |= Pinned
	}
	s.elements = append(s.elements, e)
	s.byNote[e.NoteID] = append(s.byNote[e.NoteID], e)
}

// Mark sets a marker on every element of the note. Unknown ids are a
// silent no-op; a stale id self-heals on the next frame.
func (s *Scene) Mark(id string, m Marker) {
	for _, e := range s.byNote[id] {
		if e.marks&m != 0 {
			continue
		}
		e.marks |= m
		if m == Playing {
			e.Scale = playingScale
		}
		s.toggled(e)
	}
}

func (s *Scene) Unmark(id string, m Marker) {
	for _, e := range s.byNote[id] {
		if e.marks&m == 0 {
			continue
		}
		e.marks &^= m
		if m == Playing {
			e.Scale = 1.0
		}
		s.toggled(e)
	}
}

func (s *Scene) toggled(e *Element) {
	if nil != s.onToggle {
		s.onToggle(e)
	}
}
