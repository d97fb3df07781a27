package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/eiannone/keyboard"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"

	"git.lost.host/meutraa/glow/internal/config"
	"git.lost.host/meutraa/glow/internal/governor"
	"git.lost.host/meutraa/glow/internal/interval"
	"git.lost.host/meutraa/glow/internal/loop"
	"git.lost.host/meutraa/glow/internal/parser"
	"git.lost.host/meutraa/glow/internal/pin"
	"git.lost.host/meutraa/glow/internal/render"
	"git.lost.host/meutraa/glow/internal/scene"
	"git.lost.host/meutraa/glow/internal/theme"
	"git.lost.host/meutraa/glow/internal/transport"
)

func main() {
	config.Parse()
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

// host owns the structural inputs and the reconciliation gate. It never
// computes highlight state itself; after any rebuild it defers to the
// controller's reapply.
type host struct {
	ctrl   *loop.Controller
	sc     *scene.Scene
	r      render.Renderer
	th     theme.Theme
	store  *pin.Store
	song   *parser.Song
	inputs scene.Inputs

	// nav is the note list in start order, for selection movement
	nav      []interval.Note
	selected int

	mu      sync.Mutex
	pending scene.Inputs
	queue   func(func())
}

// snapshot copies the structural inputs under the frame lock. Key
// handlers must derive their next inputs from this, never from a bare
// read, because reconcile can run on the debounce timer goroutine.
func (h *host) snapshot() scene.Inputs {
	var in scene.Inputs
	h.ctrl.Exclusive(func() { in = h.inputs })
	return in
}

// reconcile is the gate: rebuild iff a structural input changed, then
// reapply highlight state before anything else runs. The comparison,
// the inputs write and the rebuild share one critical section so no
// frame or other reconcile can interleave.
func (h *host) reconcile(next scene.Inputs) {
	h.ctrl.Rebuild(func() {
		rebuild := scene.ShouldRebuild(h.inputs, next)
		h.inputs = next
		if !rebuild {
			return
		}
		h.sc.Rebuild(next)
		h.r.DrawScene(h.sc, h.th)
	})
}

// reconcileSoon coalesces bursts of structural changes, such as a held
// down scroll key, into one rebuild.
func (h *host) reconcileSoon(next scene.Inputs) {
	h.mu.Lock()
	h.pending = next
	h.mu.Unlock()
	h.queue(func() {
		h.mu.Lock()
		next := h.pending
		h.mu.Unlock()
		h.reconcile(next)
	})
}

func (h *host) drawStats(cell *transport.Cell, row int) {
	st := h.ctrl.Stats()
	line := fmt.Sprintf("%8v tick %v  active %v  steps %v  skips %v/%v   ",
		cell.Status(), cell.Tick(), st.Active, st.Steps, st.FrameSkips, st.BudgetSkips)
	h.ctrl.Exclusive(func() {
		h.r.Fill(row, 1, "\033[0m"+line)
		h.r.Flush()
	})
}

func run() error {
	// Ensure our Default implementations are used as interfaces
	var r render.Renderer = &render.DefaultRenderer{}
	var th theme.Theme = &theme.DefaultTheme{}
	var psr parser.Parser = &parser.DefaultParser{}

	var midiFile, mp3File, oggFile string
	if err := filepath.Walk(*config.Directory, func(p string, info os.FileInfo, err error) error {
		switch path.Ext(p) {
		case ".mid", ".midi":
			midiFile = p
		case ".mp3":
			mp3File = p
		case ".ogg":
			oggFile = p
		}
		return nil
	}); nil != err {
		return fmt.Errorf("unable to walk score directory: %w", err)
	}
	if midiFile == "" {
		return errors.New("unable to find a .mid file in given directory")
	}

	song, err := psr.Parse(midiFile)
	if nil != err {
		return err
	}
	if len(song.Notes) == 0 {
		return errors.New("score has no notes")
	}

	keyChannel, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			log.Println("unable to close keyboard", err)
		}
	}()

	store := &pin.Store{}
	if err := store.Init(*config.Database); nil != err {
		return fmt.Errorf("unable to open pin database: %w", err)
	}
	defer store.Deinit()
	pins, err := store.Load(song.Sum)
	if nil != err {
		log.Println("unable to load pins", err)
		pins = pin.New()
	}

	// Audio is optional and owns its own timing; the highlight engine
	// only ever reads the position cell.
	var audioCtrl *beep.Ctrl
	var streamer beep.StreamSeekCloser
	audioFile := mp3File
	if oggFile != "" {
		audioFile = oggFile
	}
	if audioFile != "" {
		f, err := os.Open(audioFile)
		if nil != err {
			return err
		}
		var format beep.Format
		if oggFile != "" {
			streamer, format, err = vorbis.Decode(f)
		} else {
			streamer, format, err = mp3.Decode(f)
		}
		if nil != err {
			return err
		}
		defer streamer.Close()
		speaker.Init(beep.SampleRate(math.Round(float64(format.SampleRate)*(*config.Rate))), format.SampleRate.N(time.Second/60))
		audioCtrl = &beep.Ctrl{Streamer: streamer}
	}
	setAudioPaused := func(p bool) {
		if nil == audioCtrl {
			return
		}
		speaker.Lock()
		audioCtrl.Paused = p
		speaker.Unlock()
	}

	if err := r.Init(); nil != err {
		return err
	}
	defer func() {
		if err := r.Deinit(); nil != err {
			log.Println("unable to restore terminal", err)
		}
	}()
	rows, cols, err := r.Size()
	if nil != err {
		return err
	}

	profile := governor.Resolve(*config.Profile)
	if *config.Cadence > 0 {
		profile.FrameInterval = *config.Cadence
	}
	if *config.Budget > 0 {
		profile.Budget = *config.Budget
	}
	gov := governor.New(profile)

	cell := &transport.Cell{}
	driver := transport.NewDriver(cell, song.BPM, song.TicksPerQuarter, *config.Rate)
	driver.Start()
	defer driver.Close()

	holder := &interval.Holder{}
	holder.Set(song.Notes, nil)

	sc := scene.New()
	h := &host{
		sc:    sc,
		r:     r,
		th:    th,
		store: store,
		song:  song,
		queue: debounce.New(40 * time.Millisecond),
	}
	h.nav = make([]interval.Note, len(song.Notes))
	copy(h.nav, song.Notes)
	sort.SliceStable(h.nav, func(i, j int) bool {
		return h.nav[i].Start < h.nav[j].Start
	})

	viewTicks := *config.ViewBeats * parser.Resolution
	h.inputs = scene.Inputs{
		Song:       song,
		Viewport:   scene.Viewport{Start: 0, End: viewTicks, Rows: rows - 2, Cols: cols},
		SelectedID: h.nav[0].ID,
		Pins:       pins,
	}

	ctrl := loop.New(cell, holder.Get, gov, sc, func(id string) bool {
		return h.inputs.Pins.Has(id)
	})
	h.ctrl = ctrl
	sc.OnToggle(func(e *scene.Element) {
		r.DrawElement(e, th)
	})

	ctrl.Rebuild(func() {
		sc.Rebuild(h.inputs)
		r.DrawScene(sc, th)
	})
	ctrl.Start()
	defer ctrl.Stop()

	go func() {
		time.Sleep(*config.Delay)
		driver.Play()
		if nil != audioCtrl {
			speaker.Play(audioCtrl)
		}
	}()

	stats := time.NewTicker(500 * time.Millisecond)
	defer stats.Stop()

	for {
		select {
		case <-stats.C:
			h.drawStats(cell, rows)
		case key, ok := <-keyChannel:
			if !ok {
				return nil
			}
			switch {
			case key.Key == keyboard.KeyEsc || key.Rune == 'q':
				return nil

			case key.Key == keyboard.KeySpace:
				if cell.Status() == transport.Playing {
					driver.Pause()
					setAudioPaused(true)
				} else {
					driver.Play()
					setAudioPaused(false)
				}

			case key.Rune == 's':
				driver.Stop()
				if nil != audioCtrl {
					speaker.Lock()
					streamer.Seek(0)
					audioCtrl.Paused = true
					speaker.Unlock()
				}

			case key.Key == keyboard.KeyArrowRight || key.Key == keyboard.KeyArrowLeft:
				next := h.snapshot()
				shift := int64(parser.Resolution)
				if key.Key == keyboard.KeyArrowLeft {
					shift = -shift
				}
				if next.Viewport.Start+shift < 0 {
					shift = -next.Viewport.Start
				}
				next.Viewport.Start += shift
				next.Viewport.End += shift
				h.reconcileSoon(next)

			case key.Key == keyboard.KeyArrowDown || key.Key == keyboard.KeyArrowUp:
				if key.Key == keyboard.KeyArrowDown && h.selected < len(h.nav)-1 {
					h.selected++
				}
				if key.Key == keyboard.KeyArrowUp && h.selected > 0 {
					h.selected--
				}
				next := h.snapshot()
				next.SelectedID = h.nav[h.selected].ID
				h.reconcile(next)

			case key.Rune == 'p':
				next := h.snapshot()
				next.Pins = next.Pins.Toggle(next.SelectedID)
				h.reconcile(next)
				if err := store.Save(song.Sum, next.Pins); nil != err {
					log.Println("unable to save pins", err)
				}

			case key.Rune == '[':
				next := h.snapshot()
				next.Loop.Start = cell.Tick()
				h.reconcile(next)
				driver.SetLoop(next.Loop.Start, next.Loop.End)

			case key.Rune == ']':
				next := h.snapshot()
				next.Loop.End = cell.Tick()
				h.reconcile(next)
				driver.SetLoop(next.Loop.Start, next.Loop.End)
			}
		}
	}
}
