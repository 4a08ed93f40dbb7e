package presence

import "time"

// Participant is one connection that has entered a room.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Room string `json:"room"`
}

type TransitionKind string

const (
	TransitionJoined       TransitionKind = "joined"
	TransitionDisconnected TransitionKind = "disconnected"
)

// Transition describes a completed membership change. Observers receive it
// after the store was mutated.
type Transition struct {
	Kind         TransitionKind `json:"kind"`
	Participant  Participant    `json:"participant"`
	PreviousRoom string         `json:"previous_room,omitempty"`
	ActiveRooms  []string       `json:"active_rooms"`
	At           time.Time      `json:"at"`
}

// Observer is notified of every transition. Observe runs inside the
// coordinator's critical section and must not block.
type Observer interface {
	Observe(t Transition)
}
