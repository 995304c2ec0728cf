package sprites

import (
	"fmt"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/coreman2200/funtimes-treelights/internal/layout"
	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

// Rainbow is the built-in script: a hue wheel turning around the trunk.
const Rainbow = `
function render(t)
  for i = 0, count - 1 do
    add_hsv(i, (angle(i) / 360 + t / 8) % 1, 1, 0.3 * radius(i))
  end
end
`

// Script is a sprite written in Lua. The script must define render(t) and
// may define step(t). It sees:
//
//	count              number of pixels
//	angle(i)           pixel angle in degrees
//	radius(i)          pixel radius, 1 at the bottom
//	ring(i)            pixel ring index
//	add_rgb(i, r, g, b)
//	add_hsv(i, h, s, v)
//
// A script that errors is logged once and goes dark.
type Script struct {
	Name string

	L      *lua.LState
	geo    *layout.Geometry
	buf    *pixel.Buffer
	render lua.LValue
	step   lua.LValue
	failed bool
}

func NewScript(name, code string, geo *layout.Geometry) (*Script, error) {
	s := &Script{Name: name, L: lua.NewState(), geo: geo}
	s.setup()
	if err := s.L.DoString(code); err != nil {
		s.L.Close()
		return nil, fmt.Errorf("sprites: script %q: %w", name, err)
	}
	s.render = s.L.GetGlobal("render")
	if s.render.Type() != lua.LTFunction {
		s.L.Close()
		return nil, fmt.Errorf("sprites: script %q does not define render(t)", name)
	}
	if st := s.L.GetGlobal("step"); st.Type() == lua.LTFunction {
		s.step = st
	}
	return s, nil
}

func (s *Script) setup() {
	L := s.L
	n := s.geo.Len()
	L.SetGlobal("count", lua.LNumber(n))

	index := func(L *lua.LState) (int, bool) {
		i := int(L.CheckNumber(1))
		return i, i >= 0 && i < n
	}
	L.SetGlobal("angle", L.NewFunction(func(L *lua.LState) int {
		if i, ok := index(L); ok {
			L.Push(lua.LNumber(s.geo.Angle(i)))
		} else {
			L.Push(lua.LNumber(0))
		}
		return 1
	}))
	L.SetGlobal("radius", L.NewFunction(func(L *lua.LState) int {
		if i, ok := index(L); ok {
			L.Push(lua.LNumber(s.geo.Radius(i)))
		} else {
			L.Push(lua.LNumber(0))
		}
		return 1
	}))
	L.SetGlobal("ring", L.NewFunction(func(L *lua.LState) int {
		if i, ok := index(L); ok {
			L.Push(lua.LNumber(s.geo.Ring(i)))
		} else {
			L.Push(lua.LNumber(0))
		}
		return 1
	}))
	L.SetGlobal("add_rgb", L.NewFunction(func(L *lua.LState) int {
		i, ok := index(L)
		r, g, b := float64(L.CheckNumber(2)), float64(L.CheckNumber(3)), float64(L.CheckNumber(4))
		if ok && s.buf != nil {
			s.buf.Add(i, pixel.Color{R: r, G: g, B: b})
		}
		return 0
	}))
	L.SetGlobal("add_hsv", L.NewFunction(func(L *lua.LState) int {
		i, ok := index(L)
		h, sat, v := float64(L.CheckNumber(2)), float64(L.CheckNumber(3)), float64(L.CheckNumber(4))
		if ok && s.buf != nil {
			s.buf.AddHSV(i, h, sat, v)
		}
		return 0
	}))
}

func (s *Script) call(fn lua.LValue, t float64) {
	if s.failed || fn == nil {
		return
	}
	err := s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LNumber(t))
	if err != nil {
		s.failed = true
		log.Error().Err(err).Str("script", s.Name).Msg("script disabled")
	}
}

func (s *Script) Step(t float64) { s.call(s.step, t) }

func (s *Script) Render(buf *pixel.Buffer, t float64) {
	s.buf = buf
	s.call(s.render, t)
	s.buf = nil
}

// Failed reports whether the script has hit a runtime error.
func (s *Script) Failed() bool { return s.failed }

func (s *Script) Close() error {
	s.L.Close()
	return nil
}
