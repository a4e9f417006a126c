package input

// Direction is the single movement intent derived from a press state.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	default:
		return "none"
	}
}

// PressState is the normalized up/down signal pair for one paddle.
// Keyboard, touch and AI decisions all reduce to this.
type PressState struct {
	Up   bool
	Down bool
}

// Direction collapses the pair; both pressed cancels out.
func (p PressState) Direction() Direction {
	switch {
	case p.Up && !p.Down:
		return DirUp
	case p.Down && !p.Up:
		return DirDown
	default:
		return DirNone
	}
}

// Port exposes the current press state of one paddle's input source.
type Port interface {
	PressState() PressState
}

// Buttons is a Port driven by discrete key-down/key-up signals.
// The zero value has nothing pressed.
type Buttons struct {
	state PressState
}

// Compile-time check that Buttons implements Port.
var _ Port = (*Buttons)(nil)

// Press marks a direction as held.
func (b *Buttons) Press(d Direction) {
	switch d {
	case DirUp:
		b.state.Up = true
	case DirDown:
		b.state.Down = true
	}
}

// Release marks a direction as no longer held.
func (b *Buttons) Release(d Direction) {
	switch d {
	case DirUp:
		b.state.Up = false
	case DirDown:
		b.state.Down = false
	}
}

// Set replaces both flags at once (for sources that report full state per frame).
func (b *Buttons) Set(up, down bool) {
	b.state = PressState{Up: up, Down: down}
}

// PressState implements Port.
func (b *Buttons) PressState() PressState {
	return b.state
}
