package parser

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gitlab.com/gomidi/midi/v2/smf"

	"git.lost.host/meutraa/glow/internal/interval"
)

// Resolution is the tick resolution everything downstream works in,
// matching a 960 PPQ score model. Files at other metric resolutions
// are rescaled on import.
const Resolution = 960

type DefaultParser struct{}

func (p *DefaultParser) Parse(file string) (song *Song, e error) {
	// The smf reader panics on some malformed files
	defer guard(&song, &e)

	data, err := os.ReadFile(file)
	if nil != err {
		return nil, fmt.Errorf("unable to read midi file: %w", err)
	}
	return p.parse(data)
}

// guard turns a reader panic of any value type into an error return,
// never a nil song with a nil error.
func guard(song **Song, e *error) {
	r := recover()
	if nil == r {
		return
	}
	*song = nil
	*e = fmt.Errorf("unable to parse midi file: %v", r)
}

type openNote struct {
	start int64
	seq   int
}

func (p *DefaultParser) parse(data []byte) (*Song, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if nil != err {
		return nil, fmt.Errorf("unable to parse midi file: %w", err)
	}

	sum := sha256.Sum256(data)
	song := &Song{
		Keys:            map[string]uint8{},
		Sum:             base64.StdEncoding.EncodeToString(sum[:]),
		BPM:             120,
		TicksPerQuarter: Resolution,
	}

	res := uint32(Resolution)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok && mt.Ticks4th() > 0 {
		res = mt.Ticks4th()
	}
	rescale := func(ticks int64) int64 {
		return ticks * Resolution / int64(res)
	}

	tempoSet := false
	seq := 0
	for ti, track := range s.Tracks {
		var abs int64
		open := map[[2]uint8][]openNote{}

		for _, evt := range track {
			abs += int64(evt.Delta)

			var ch, key, vel uint8
			var bpm float64
			switch {
			case evt.Message.GetMetaTempo(&bpm):
				// First tempo event wins
				if !tempoSet && bpm > 0 {
					song.BPM = bpm
					tempoSet = true
				}
			case evt.Message.GetNoteStart(&ch, &key, &vel):
				open[[2]uint8{ch, key}] = append(open[[2]uint8{ch, key}], openNote{start: abs, seq: seq})
				seq++
			case evt.Message.GetNoteEnd(&ch, &key):
				k := [2]uint8{ch, key}
				stack := open[k]
				if len(stack) == 0 {
					// Orphan note-off
					continue
				}
				on := stack[len(stack)-1]
				open[k] = stack[:len(stack)-1]
				p.add(song, ti, ch, key, rescale(on.start), rescale(abs-on.start), on.seq)
			}
		}

		// Unterminated notes get a quarter note duration
		for k, stack := range open {
			for _, on := range stack {
				p.add(song, ti, k[0], k[1], rescale(on.start), Resolution, on.seq)
			}
		}
	}

	return song, nil
}

func (p *DefaultParser) add(song *Song, track int, ch, key uint8, start, duration int64, seq int) {
	if duration <= 0 {
		return
	}
	id := noteID(track, ch, key, start, seq)
	song.Notes = append(song.Notes, interval.Note{
		ID:       id,
		Start:    start,
		Duration: duration,
	})
	song.Keys[id] = key
}

// noteID is a uuid derived from the note's position so ids are stable
// across parses of the same file, which keys pin persistence.
func noteID(track int, ch, key uint8, start int64, seq int) string {
	name := fmt.Sprintf("%v/%v/%v/%v/%v", track, ch, key, start, seq)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
