package presence

// Index is a read view over a Store. Nothing is cached: every query walks
// the current participants.
type Index struct {
	store *Store
}

func NewIndex(s *Store) Index { return Index{store: s} }

// MembersOf returns the participants in room. An unknown room yields an
// empty slice.
func (ix Index) MembersOf(room string) []Participant {
	members := make([]Participant, 0)
	for _, p := range ix.store.participants {
		if p.Room == room {
			members = append(members, p)
		}
	}
	return members
}

// ActiveRooms returns every distinct room with at least one participant,
// in no particular order.
func (ix Index) ActiveRooms() []string {
	seen := make(map[string]struct{})
	rooms := make([]string, 0)
	for _, p := range ix.store.participants {
		if _, ok := seen[p.Room]; ok {
			continue
		}
		seen[p.Room] = struct{}{}
		rooms = append(rooms, p.Room)
	}
	return rooms
}
