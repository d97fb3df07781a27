package theme

import "git.lost.host/meutraa/glow/internal/scene"

type Color struct {
	R, G, B uint8
}

type Theme interface {
	RenderElement(e *scene.Element) string
	PlayingColor() Color
	PinnedColor() Color
}
