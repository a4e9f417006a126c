// Package game runs one match: the fixed-timestep engine, its state machine, the
// events it emits and the snapshot handed to renderers.
package game

// GameState is the engine-wide match phase.
type GameState int

const (
	StateMenu      GameState = iota // Waiting for Start
	StateCountdown                  // Serve countdown, bodies frozen
	StatePlaying                    // Paddles and ball integrate
	StatePaused                     // Frozen, clock paused
	StateGameOver                   // Match finished; Start begins a rematch
)

func (s GameState) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateCountdown:
		return "countdown"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// InMatch reports whether a match is under way (countdown, playing or paused).
func (s GameState) InMatch() bool {
	return s == StateCountdown || s == StatePlaying || s == StatePaused
}
