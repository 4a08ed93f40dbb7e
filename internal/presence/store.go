package presence

// Store is the authoritative table of participants keyed by connection id.
// It is not safe for concurrent use; the Coordinator owns it and serializes
// every access.
type Store struct {
	participants map[string]Participant
}

func NewStore() *Store {
	return &Store{participants: make(map[string]Participant)}
}

// Upsert inserts or replaces the participant for id.
func (s *Store) Upsert(id, name, room string) Participant {
	p := Participant{ID: id, Name: name, Room: room}
	s.participants[id] = p
	return p
}

func (s *Store) Remove(id string) {
	delete(s.participants, id)
}

func (s *Store) Get(id string) (Participant, bool) {
	p, ok := s.participants[id]
	return p, ok
}

func (s *Store) Len() int { return len(s.participants) }
