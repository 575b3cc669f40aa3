package core

// Action is a discrete player command submitted to a game session.
// The set is closed: anything a transport cannot map to one of the
// constants below becomes ActionNone, which every game treats as a no-op.
type Action int

const (
	ActionNone   Action = iota
	ActionLeft          // shift the falling piece one column left
	ActionRight         // shift the falling piece one column right
	ActionDown          // soft drop: one row down, locks if blocked
	ActionRotate        // advance to the next rotation state
	ActionDrop          // hard drop: fall to the lowest valid row and lock
	ActionStart         // begin a new game when none is running
)

var actionNames = map[Action]string{
	ActionNone:   "none",
	ActionLeft:   "left",
	ActionRight:  "right",
	ActionDown:   "down",
	ActionRotate: "rotate",
	ActionDrop:   "drop",
	ActionStart:  "start",
}

// String returns the wire name of the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAction maps a wire name to an Action.
// Names must match exactly; anything else maps to ActionNone.
func ParseAction(name string) Action {
	for a, n := range actionNames {
		if n == name {
			return a
		}
	}
	return ActionNone
}

// Actions returns every playable action in declaration order.
func Actions() []Action {
	return []Action{ActionLeft, ActionRight, ActionDown, ActionRotate, ActionDrop, ActionStart}
}
