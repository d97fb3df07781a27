package parser

import "git.lost.host/meutraa/glow/internal/interval"

// Song is the structural note collection the scene and the interval
// index are built from. A new score always arrives as a new *Song, so
// the reconciliation gate can compare by reference.
type Song struct {
	Notes           []interval.Note
	Keys            map[string]uint8 // note id -> MIDI key, for staff placement
	Sum             string           // content hash, keys pin persistence
	BPM             float64
	TicksPerQuarter uint32
}

type Parser interface {
	Parse(file string) (*Song, error)
}
