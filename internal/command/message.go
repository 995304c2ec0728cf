// Package command models the JSON messages that drive the lights remotely.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Type string

const (
	TypeAction  Type = "action"
	TypePixels  Type = "pixels"
	TypeGameKey Type = "gamekey"
	TypePing    Type = "ping"
)

var (
	ErrMalformed   = errors.New("command: malformed message")
	ErrUnknownType = errors.New("command: unknown message type")
)

// Game keys understood by the interactive scene.
const (
	KeyLeft  = "left"
	KeyRight = "right"
	KeyFire  = "fire"
)

// Message is one decoded command. Only the fields of its Type are set.
type Message struct {
	Type   Type
	Action string
	LEDs   []float64 // flat r,g,b
	Key    string
	State  bool
}

type wire struct {
	Type   Type            `json:"type"`
	Action string          `json:"action,omitempty"`
	LEDs   json.RawMessage `json:"leds,omitempty"`
	Key    string          `json:"key,omitempty"`
	State  *bool           `json:"state,omitempty"`
}

func Action(name string) Message { return Message{Type: TypeAction, Action: name} }

func GameKey(key string, down bool) Message {
	return Message{Type: TypeGameKey, Key: key, State: down}
}

func Pixels(leds []float64) Message { return Message{Type: TypePixels, LEDs: leds} }

// Decode parses and validates one message. Errors wrap ErrMalformed or
// ErrUnknownType.
func Decode(b []byte) (Message, error) {
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	m := Message{Type: w.Type}
	switch w.Type {
	case TypeAction:
		if w.Action == "" {
			return m, fmt.Errorf("%w: action without name", ErrMalformed)
		}
		m.Action = w.Action
	case TypePixels:
		leds, err := decodeLEDs(w.LEDs)
		if err != nil {
			return m, err
		}
		m.LEDs = leds
	case TypeGameKey:
		switch w.Key {
		case KeyLeft, KeyRight, KeyFire:
		default:
			return m, fmt.Errorf("%w: unknown key %q", ErrMalformed, w.Key)
		}
		if w.State == nil {
			return m, fmt.Errorf("%w: gamekey without state", ErrMalformed)
		}
		m.Key, m.State = w.Key, *w.State
	case TypePing:
	case "":
		return m, fmt.Errorf("%w: missing type", ErrMalformed)
	default:
		return m, fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
	return m, nil
}

// decodeLEDs accepts a flat array or a string holding one, which is what
// older masters publish.
func decodeLEDs(raw json.RawMessage) ([]float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: pixels without leds", ErrMalformed)
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: leds: %v", ErrMalformed, err)
		}
		raw = json.RawMessage(s)
	}
	var leds []float64
	if err := json.Unmarshal(raw, &leds); err != nil {
		return nil, fmt.Errorf("%w: leds: %v", ErrMalformed, err)
	}
	if len(leds)%3 != 0 {
		return nil, fmt.Errorf("%w: %d led values is not a multiple of 3", ErrMalformed, len(leds))
	}
	return leds, nil
}

// Encode renders m in wire form.
func Encode(m Message) ([]byte, error) {
	w := wire{Type: m.Type, Action: m.Action, Key: m.Key}
	switch m.Type {
	case TypePixels:
		leds := m.LEDs
		if leds == nil {
			leds = []float64{}
		}
		b, err := json.Marshal(leds)
		if err != nil {
			return nil, err
		}
		w.LEDs = b
	case TypeGameKey:
		st := m.State
		w.State = &st
	}
	return json.Marshal(w)
}
