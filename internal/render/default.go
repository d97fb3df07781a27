package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"git.lost.host/meutraa/glow/internal/scene"
	"git.lost.host/meutraa/glow/internal/theme"
)

type DefaultRenderer struct {
	// Out defaults to stdout
	Out io.Writer

	buffer       strings.Builder
	restoreState *term.State
}

func (r *DefaultRenderer) Init() error {
	if nil == r.Out {
		r.Out = os.Stdout
	}
	state, err := term.MakeRaw(int(os.Stdout.Fd()))
	if nil != err {
		return err
	}
	r.restoreState = state

	fmt.Fprintf(r.Out, "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	fmt.Fprintf(r.Out, "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	return term.Restore(int(os.Stdout.Fd()), r.restoreState)
}

func (r *DefaultRenderer) Size() (int, int, error) {
	columns, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if nil != err {
		return 0, 0, fmt.Errorf("unable to get terminal size: %w", err)
	}
	return rows, columns, nil
}

// Fill buffers a write of message at the 1-based row and column.
func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) Flush() {
	if nil == r.Out {
		r.Out = os.Stdout
	}
	io.WriteString(r.Out, r.buffer.String())
	r.buffer.Reset()
}

func (r *DefaultRenderer) DrawScene(sc *scene.Scene, th theme.Theme) {
	r.buffer.WriteString("\033[2J")
	for _, e := range sc.Elements() {
		r.place(e, th)
	}
	r.Flush()
}

func (r *DefaultRenderer) DrawElement(e *scene.Element, th theme.Theme) {
	r.place(e, th)
	r.Flush()
}

func (r *DefaultRenderer) place(e *scene.Element, th theme.Theme) {
	r.Fill(e.Row+1, e.Col+1, th.RenderElement(e))
}
