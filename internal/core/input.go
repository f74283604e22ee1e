package core

// Action is the binary control decision applied to the player each frame.
type Action int

const (
	ActionNone Action = iota // Let gravity act
	ActionJump               // Apply the jump impulse
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionJump:
		return "Jump"
	default:
		return "Unknown"
	}
}
