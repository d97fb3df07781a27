package testdata

import (
	"fmt"

	"git.lost.host/meutraa/glow/internal/interval"
	"git.lost.host/meutraa/glow/internal/parser"
)

// GetSong returns a deterministic one octave C major scale, one
// quarter note per beat at 960 ticks, ids n0 through n7.
func GetSong() *parser.Song {
	keys := []uint8{60, 62, 64, 65, 67, 69, 71, 72}
	song := &parser.Song{
		Keys:            map[string]uint8{},
		Sum:             "testdata",
		BPM:             120,
		TicksPerQuarter: 960,
	}
	for i, k := range keys {
		id := fmt.Sprintf("n%v", i)
		song.Notes = append(song.Notes, interval.Note{
			ID:       id,
			Start:    int64(i) * 960,
			Duration: 960,
		})
		song.Keys[id] = k
	}
	return song
}
