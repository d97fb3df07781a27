package interval

import (
	"log"
	"sort"
)

// Note is a half-open time interval [Start, Start+Duration) in ticks.
type Note struct {
	ID       string
	Start    int64
	Duration int64
}

func (n *Note) End() int64 {
	return n.Start + n.Duration
}

// Index answers "which notes sound at tick T" in O(log n + k).
// It is never mutated in place; Build replaces the whole structure.
type Index struct {
	notes []Note
	// maxEnd[i] is the largest End over notes[0..i], so a backward scan
	// from the binary search point can stop as soon as no earlier note
	// can still cover the queried tick.
	maxEnd []int64
}

// Build sorts the given notes by start tick. Entries with an empty id,
// a non-positive duration or a negative start are skipped, not fatal.
// A nil diag defaults to log.Printf.
func Build(notes []Note, diag func(format string, v ...interface{})) *Index {
	if nil == diag {
		diag = log.Printf
	}
	kept := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.ID == "" {
			diag("interval: skipping note with empty id at tick %v", n.Start)
			continue
		}
		if n.Duration <= 0 {
			diag("interval: skipping note %v with duration %v", n.ID, n.Duration)
			continue
		}
		if n.Start < 0 {
			diag("interval: skipping note %v with start %v", n.ID, n.Start)
			continue
		}
		kept = append(kept, n)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start < kept[j].Start
	})

	maxEnd := make([]int64, len(kept))
	for i, n := range kept {
		maxEnd[i] = n.End()
		if i > 0 && maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &Index{notes: kept, maxEnd: maxEnd}
}

func (ix *Index) Len() int {
	if nil == ix {
		return 0
	}
	return len(ix.notes)
}

// FindActive returns the ids of all notes whose interval contains tick,
// in ascending start order. Empty for out of range ticks and empty or
// nil indices.
func (ix *Index) FindActive(tick int64) []string {
	return ix.FindActiveInto(tick, nil)
}

// FindActiveInto appends active ids to ids and returns it, so a caller
// polling every frame can reuse one buffer.
func (ix *Index) FindActiveInto(tick int64, ids []string) []string {
	if nil == ix || len(ix.notes) == 0 {
		return ids
	}

	// First note starting after tick; everything at or before it is a
	// candidate.
	hi := sort.Search(len(ix.notes), func(i int) bool {
		return ix.notes[i].Start > tick
	})

	from := len(ids)
	for i := hi - 1; i >= 0; i-- {
		if ix.maxEnd[i] <= tick {
			break
		}
		if ix.notes[i].End() > tick {
			ids = append(ids, ix.notes[i].ID)
		}
	}

	// The backward scan collected in reverse start order.
	for l, r := from, len(ids)-1; l < r; l, r = l+1, r-1 {
		ids[l], ids[r] = ids[r], ids[l]
	}
	return ids
}

// Holder swaps whole indices on score transitions. Replacing a valid
// index with an empty one is ignored so a score passing through an
// empty note collection does not leave a visible highlight gap.
type Holder struct {
	cur *Index
}

func (h *Holder) Set(notes []Note, diag func(format string, v ...interface{})) {
	ix := Build(notes, diag)
	if ix.Len() == 0 && h.cur.Len() > 0 {
		return
	}
	h.cur = ix
}

func (h *Holder) Get() *Index {
	return h.cur
}
