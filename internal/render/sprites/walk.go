package sprites

import (
	"github.com/coreman2200/funtimes-treelights/internal/pixel"
	"github.com/coreman2200/funtimes-treelights/internal/render"
)

// Walk is the game: a small blob the controller moves along the strip.
// Each key message moves it one pixel; fire brightens it while held.
type Walk struct {
	Pos    int
	Radius int

	n    int
	fire bool
}

func NewWalk(n int) *Walk {
	w := &Walk{Radius: 3, n: n}
	if n > 0 {
		w.Pos = 124 % n
	}
	return w
}

func (w *Walk) HandleKeys(k render.GameKeys) {
	if w.n == 0 {
		return
	}
	if k.Left {
		w.Pos--
	}
	if k.Right {
		w.Pos++
	}
	w.Pos = pixel.Wrap(w.Pos, w.n)
	w.fire = k.Fire
}

func (w *Walk) Step(float64) {}

func (w *Walk) Render(buf *pixel.Buffer, _ float64) {
	if w.n == 0 {
		return
	}
	v := 0.2
	if w.fire {
		v = 0.6
	}
	for i := w.Pos - w.Radius; i < w.Pos+w.Radius; i++ {
		buf.AddHSV(pixel.Wrap(i, w.n), 0.3, 0.4, v)
	}
}
