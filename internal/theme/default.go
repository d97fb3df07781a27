package theme

import (
	"fmt"
	"strings"

	"git.lost.host/meutraa/glow/internal/scene"
)

type DefaultTheme struct{}

var noteColors = map[int]Color{
	1:  {236, 30, 0},    // 1/4 red
	2:  {0, 118, 236},   // 1/8 blue
	3:  {106, 0, 236},   // 1/12 purple
	4:  {236, 195, 0},   // 1/16 yellow
	6:  {236, 0, 106},   // 1/24 pink
	8:  {236, 128, 0},   // 1/32 orange
	12: {173, 236, 236}, // 1/48 light blue
	16: {0, 236, 128},   // 1/64 green
	-1: {255, 255, 255}, // other white
}

var (
	playing = Color{30, 100, 236}
	pinned  = Color{236, 195, 0}
)

func getNoteColor(d int) Color {
	col, ok := noteColors[d]
	if !ok {
		return noteColors[-1]
	}
	return col
}

func (t *DefaultTheme) PlayingColor() Color { return playing }
func (t *DefaultTheme) PinnedColor() Color  { return pinned }

// RenderElement styles one element. The pinned background always wins
// over the playing background on the same element.
func (t *DefaultTheme) RenderElement(e *scene.Element) string {
	var b strings.Builder

	switch {
	case e.Has(scene.Pinned):
		fmt.Fprintf(&b, "\033[48;2;%v;%v;%vm\033[38;2;0;0;0m", pinned.R, pinned.G, pinned.B)
	case e.Has(scene.Playing):
		fg := getNoteColor(e.Denom)
		fmt.Fprintf(&b, "\033[48;2;%v;%v;%vm\033[38;2;%v;%v;%vm", playing.R, playing.G, playing.B, fg.R, fg.G, fg.B)
	default:
		fg := getNoteColor(e.Denom)
		fmt.Fprintf(&b, "\033[38;2;%v;%v;%vm", fg.R, fg.G, fg.B)
	}

	if e.Scale > 1.0 {
		b.WriteString("\033[1m")
	}
	if e.Selected {
		b.WriteString("\033[4m")
	}
	b.WriteRune(e.Glyph)
	b.WriteString("\033[0m")
	return b.String()
}
