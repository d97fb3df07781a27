package render

import (
	"git.lost.host/meutraa/glow/internal/scene"
	"git.lost.host/meutraa/glow/internal/theme"
)

type Renderer interface {
	Init() error
	Deinit() error
	Size() (rows, cols int, err error)
	Fill(row, column int, message string)
	Flush()

	// DrawScene repaints everything after a structural rebuild.
	DrawScene(sc *scene.Scene, th theme.Theme)
	// DrawElement repaints a single element cell after a marker toggle.
	DrawElement(e *scene.Element, th theme.Theme)
}
