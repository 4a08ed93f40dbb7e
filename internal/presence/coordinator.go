package presence

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrUnknownConnection = errors.New("unknown connection")

const (
	DefaultSystemName  = "Admin"
	DefaultWelcomeText = "Welcome to chat!"
	DefaultTimeLayout  = "3:04:05 PM"
)

type Options struct {
	SystemName  string
	WelcomeText string
	TimeLayout  string
	Now         func() time.Time
}

func (o *Options) setDefaults() {
	if o.SystemName == "" {
		o.SystemName = DefaultSystemName
	}
	if o.WelcomeText == "" {
		o.WelcomeText = DefaultWelcomeText
	}
	if o.TimeLayout == "" {
		o.TimeLayout = DefaultTimeLayout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Coordinator owns the presence state and drives every join, switch and
// leave. Each transition mutates the store, queries the index and hands its
// notices to the Deliverer while holding mu, so no other transition can
// observe or interleave with a half-applied change.
type Coordinator struct {
	mu        sync.Mutex
	store     *Store
	index     Index
	connected map[string]struct{}

	out       Deliverer
	observers []Observer
	opts      Options
}

func NewCoordinator(out Deliverer, opts Options, observers ...Observer) *Coordinator {
	opts.setDefaults()
	store := NewStore()
	return &Coordinator{
		store:     store,
		index:     NewIndex(store),
		connected: make(map[string]struct{}),
		out:       out,
		observers: observers,
		opts:      opts,
	}
}

// Connect registers a freshly established connection and welcomes it.
func (c *Coordinator) Connect(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected[id] = struct{}{}
	c.toConn(id, Notice{
		Kind: NoticeWelcome,
		Name: c.opts.SystemName,
		Text: c.opts.WelcomeText,
		Time: c.stamp(),
	})
	zap.L().Debug("presence.connect", zap.String("conn", id))
}

// EnterRoom moves id into room, leaving its previous room if it had one.
// Re-entering the current room replays the full leave and join cycle.
func (c *Coordinator) EnterRoom(id, name, room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.connected[id]; !ok {
		return fmt.Errorf("enter room %q: %w", room, ErrUnknownConnection)
	}

	prev, hadRoom := c.store.Get(id)
	p := c.store.Upsert(id, name, room)

	if hadRoom {
		c.toRoom(prev.Room, id, c.system(fmt.Sprintf("%s has left the room", name)))
		c.toRoom(prev.Room, id, c.memberList(prev.Room))
	}

	c.toConn(id, c.system(fmt.Sprintf("You have joined the %s chat room", p.Room)))
	c.toRoom(p.Room, id, c.system(fmt.Sprintf("%s has joined the room", p.Name)))
	c.toRoom(p.Room, "", c.memberList(p.Room))

	rooms := c.index.ActiveRooms()
	c.toAll(Notice{Kind: NoticeRoomList, Rooms: rooms})

	t := Transition{Kind: TransitionJoined, Participant: p, ActiveRooms: rooms, At: c.opts.Now()}
	if hadRoom {
		t.PreviousRoom = prev.Room
	}
	c.notify(t)

	zap.L().Debug("presence.enter_room",
		zap.String("conn", id),
		zap.String("room", room),
		zap.String("previous_room", t.PreviousRoom),
	)
	return nil
}

// Disconnect forgets id. Unknown or already removed connections are a no-op.
func (c *Coordinator) Disconnect(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, inRoom := c.store.Get(id)
	c.store.Remove(id)
	delete(c.connected, id)

	if !inRoom {
		return
	}

	c.toRoom(p.Room, "", c.system(fmt.Sprintf("%s has left the room", p.Name)))
	c.toRoom(p.Room, "", c.memberList(p.Room))

	rooms := c.index.ActiveRooms()
	c.toAll(Notice{Kind: NoticeRoomList, Rooms: rooms})

	c.notify(Transition{Kind: TransitionDisconnected, Participant: p, ActiveRooms: rooms, At: c.opts.Now()})
	zap.L().Debug("presence.disconnect", zap.String("conn", id), zap.String("room", p.Room))
}

// ChatMessage relays text to every member of the sender's room, sender
// included. Messages from connections without a room are dropped.
func (c *Coordinator) ChatMessage(id, name, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.store.Get(id)
	if !ok {
		zap.L().Debug("presence.chat_dropped", zap.String("conn", id))
		return
	}
	c.toRoom(p.Room, "", Notice{Kind: NoticeChat, Name: name, Text: text, Time: c.stamp()})
}

// ActivityPing tells the other members of the sender's room that label is
// active. Like ChatMessage it is dropped when the sender has no room.
func (c *Coordinator) ActivityPing(id, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.store.Get(id)
	if !ok {
		return
	}
	c.toRoom(p.Room, id, Notice{Kind: NoticeActivity, Name: label})
}

// Announce sends a system notice to every connection.
func (c *Coordinator) Announce(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toAll(c.system(text))
}

// Participant returns the current record for id.
func (c *Coordinator) Participant(id string) (Participant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(id)
}

func (c *Coordinator) Members(room string) []Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.MembersOf(room)
}

func (c *Coordinator) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.ActiveRooms()
}

func (c *Coordinator) ConnectionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.connected)
}

// ─────────────────────────────── helpers ─────────────────────────────────────
// All helpers expect mu to be held.

func (c *Coordinator) stamp() string { return c.opts.Now().Format(c.opts.TimeLayout) }

func (c *Coordinator) system(text string) Notice {
	return Notice{Kind: NoticeSystem, Name: c.opts.SystemName, Text: text, Time: c.stamp()}
}

func (c *Coordinator) memberList(room string) Notice {
	return Notice{Kind: NoticeMemberList, Room: room, Members: c.index.MembersOf(room)}
}

func (c *Coordinator) toConn(id string, n Notice) {
	c.out.Deliver(id, n)
}

// toRoom delivers n to every member of room except the connection `except`.
func (c *Coordinator) toRoom(room, except string, n Notice) {
	for _, p := range c.index.MembersOf(room) {
		if p.ID == except {
			continue
		}
		c.out.Deliver(p.ID, n)
	}
}

func (c *Coordinator) toAll(n Notice) {
	for id := range c.connected {
		c.out.Deliver(id, n)
	}
}

func (c *Coordinator) notify(t Transition) {
	for _, o := range c.observers {
		o.Observe(t)
	}
}
