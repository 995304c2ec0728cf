package render

import (
	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

// ModKind identifies a modifier. A stack holds at most one of each kind.
type ModKind int

const (
	ModReverse ModKind = iota
	ModStop
	ModSpin
	ModInvert
	ModFade
)

func (k ModKind) String() string {
	switch k {
	case ModReverse:
		return "reverse"
	case ModStop:
		return "stop"
	case ModSpin:
		return "spin"
	case ModInvert:
		return "invert"
	case ModFade:
		return "fade"
	}
	return "unknown"
}

// Frame is what post stages see of the current tick.
type Frame struct {
	T  float64 // virtual time rendered
	DT float64 // wall-clock seconds since the previous tick
}

// Modifier alters every scene the same way: it can bend the virtual time
// step before sprites run and touch the buffer after they render.
type Modifier interface {
	Kind() ModKind
	TransformTime(dt float64) float64
	PostRender(buf *pixel.Buffer, f Frame)
	// Done reports that the modifier has finished and can be dropped.
	Done() bool
}

type reverse struct{}

func NewReverse() Modifier { return reverse{} }

func (reverse) Kind() ModKind                    { return ModReverse }
func (reverse) TransformTime(dt float64) float64 { return -dt }
func (reverse) PostRender(*pixel.Buffer, Frame)  {}
func (reverse) Done() bool                       { return false }

// stop freezes virtual time. The frame loop also stops re-rendering the
// scene so random sprites hold still.
type stop struct{}

func NewStop() Modifier { return stop{} }

func (stop) Kind() ModKind                   { return ModStop }
func (stop) TransformTime(float64) float64   { return 0 }
func (stop) PostRender(*pixel.Buffer, Frame) {}
func (stop) Done() bool                      { return false }

type invert struct{}

func NewInvert() Modifier { return invert{} }

func (invert) Kind() ModKind                         { return ModInvert }
func (invert) TransformTime(dt float64) float64      { return dt }
func (invert) PostRender(buf *pixel.Buffer, _ Frame) { buf.Invert() }
func (invert) Done() bool                            { return false }

// Spin rotates the frame along the strip at Rate pixels per second until it
// has moved Distance pixels.
type Spin struct {
	Rate     float64
	Distance int
	offset   float64
}

func NewSpin(rate float64, distance int) *Spin {
	return &Spin{Rate: rate, Distance: distance}
}

func (s *Spin) Kind() ModKind                    { return ModSpin }
func (s *Spin) TransformTime(dt float64) float64 { return dt }
func (s *Spin) Done() bool                       { return s.offset >= float64(s.Distance) }

func (s *Spin) PostRender(buf *pixel.Buffer, f Frame) {
	if s.Done() {
		return
	}
	buf.Rotate(int(s.offset))
	s.offset += s.Rate * f.DT
}

// Fade dims the output to black and back over Duration wall-clock seconds.
// While dimming it stays on the stack holding the strip dark; once
// brightened back to full it is done.
type Fade struct {
	Duration float64
	level    float64
	dimming  bool
}

// NewFade starts dimming from full brightness.
func NewFade(duration float64) *Fade {
	return &Fade{Duration: duration, level: 1, dimming: true}
}

func (f *Fade) Kind() ModKind  { return ModFade }
func (f *Fade) Level() float64 { return f.level }
func (f *Fade) Dimming() bool  { return f.dimming }
func (f *Fade) Dim()           { f.dimming = true }
func (f *Fade) Brighten()      { f.dimming = false }
func (f *Fade) Off() bool      { return f.dimming && f.level <= 0 }
func (f *Fade) Done() bool     { return !f.dimming && f.level >= 1 }

// TransformTime holds the animation still once fully off.
func (f *Fade) TransformTime(dt float64) float64 {
	if f.Off() {
		return 0
	}
	return dt
}

func (f *Fade) PostRender(buf *pixel.Buffer, fr Frame) {
	step := 1.0
	if f.Duration > 0 {
		step = fr.DT / f.Duration
	}
	if f.dimming {
		f.level -= step
	} else {
		f.level += step
	}
	if f.level < 0 {
		f.level = 0
	} else if f.level > 1 {
		f.level = 1
	}
	if f.level < 1 {
		buf.Scale(f.level)
	}
}

// ModifierStack applies modifiers in insertion order.
type ModifierStack struct {
	mods []Modifier
}

func (s *ModifierStack) index(k ModKind) int {
	for i, m := range s.mods {
		if m.Kind() == k {
			return i
		}
	}
	return -1
}

func (s *ModifierStack) Has(k ModKind) bool { return s.index(k) >= 0 }

func (s *ModifierStack) Get(k ModKind) Modifier {
	if i := s.index(k); i >= 0 {
		return s.mods[i]
	}
	return nil
}

// Add pushes m unless its kind is already present. It reports whether m was
// added.
func (s *ModifierStack) Add(m Modifier) bool {
	if s.Has(m.Kind()) {
		return false
	}
	s.mods = append(s.mods, m)
	return true
}

func (s *ModifierStack) Remove(k ModKind) bool {
	i := s.index(k)
	if i < 0 {
		return false
	}
	s.mods = append(s.mods[:i], s.mods[i+1:]...)
	return true
}

// Toggle removes the kind of m if present, otherwise adds m. It reports
// whether the kind is now present.
func (s *ModifierStack) Toggle(m Modifier) bool {
	if s.Remove(m.Kind()) {
		return false
	}
	s.mods = append(s.mods, m)
	return true
}

func (s *ModifierStack) Kinds() []ModKind {
	out := make([]ModKind, len(s.mods))
	for i, m := range s.mods {
		out[i] = m.Kind()
	}
	return out
}

func (s *ModifierStack) Len() int { return len(s.mods) }

func (s *ModifierStack) TransformTime(dt float64) float64 {
	for _, m := range s.mods {
		dt = m.TransformTime(dt)
	}
	return dt
}

// PostRender runs every modifier over buf and drops the finished ones.
func (s *ModifierStack) PostRender(buf *pixel.Buffer, f Frame) {
	kept := s.mods[:0]
	for _, m := range s.mods {
		m.PostRender(buf, f)
		if !m.Done() {
			kept = append(kept, m)
		}
	}
	for i := len(kept); i < len(s.mods); i++ {
		s.mods[i] = nil
	}
	s.mods = kept
}
