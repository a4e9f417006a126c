// Package input normalizes paddle input into press states and decodes terminal key bytes.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report key repeats, never key-up.
const keyHoldDuration = 120 * time.Millisecond

// Input represents the current frame's decoded terminal input.
type Input struct {
	Quit    bool
	Pause   bool // Edge-triggered: true only on the frame the key arrived
	Start   bool // Edge-triggered
	Left    PressState
	Right   PressState
	Pressed []byte
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	leftUp    time.Time
	leftDown  time.Time
	rightUp   time.Time
	rightDown time.Time
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch    chan byte
	state keyState
	now   func() time.Time
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// The goroutine exits when r returns an error (e.g. the session closed).
func StartStream(r *bufio.Reader) *Stream {
	s := newStream()
	go func() {
		defer close(s.ch)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			s.ch <- b
		}
	}()
	return s
}

func newStream() *Stream {
	return &Stream{
		ch:  make(chan byte, 128),
		now: time.Now,
	}
}

// Reset forgets held keys, so a key held across a screen change does not leak into play.
func (s *Stream) Reset() {
	s.state = keyState{}
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Handles escape sequences for arrow keys. A closed stream reports Quit.
func ReadInput(s *Stream) Input {
	now := s.now()
	var buf []byte
	closed := false

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	inp := Input{Quit: closed, Pressed: buf}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A': // Up arrow
				s.state.rightUp = now
				i += 2
				continue
			case 'B': // Down arrow
				s.state.rightDown = now
				i += 2
				continue
			case 'C', 'D': // Left/right arrows are unused
				i += 2
				continue
			}
		}

		applyByte(s, &inp, b, now)
	}

	inp.Left = PressState{
		Up:   now.Sub(s.state.leftUp) < keyHoldDuration,
		Down: now.Sub(s.state.leftDown) < keyHoldDuration,
	}
	inp.Right = PressState{
		Up:   now.Sub(s.state.rightUp) < keyHoldDuration,
		Down: now.Sub(s.state.rightDown) < keyHoldDuration,
	}

	return inp
}

// applyByte updates held-key timestamps and edge-triggered flags for one byte.
func applyByte(s *Stream, inp *Input, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', '\x03': // q or Ctrl-C
		inp.Quit = true
	case 'p', 'P', '\x1b':
		inp.Pause = true
	case ' ', '\n', '\r':
		inp.Start = true
	case 'w', 'W':
		s.state.leftUp = now
	case 's', 'S':
		s.state.leftDown = now
	case 'i', 'I':
		s.state.rightUp = now
	case 'k', 'K':
		s.state.rightDown = now
	}
}
