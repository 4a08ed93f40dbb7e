// Package presencemirror copies presence transitions into Redis so that
// dashboards and other processes can read who is where without talking to
// the chat server. The mirror is write-only: nothing is ever read back.
package presencemirror

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"chatroomgo/internal/presence"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	queueSize    = 256
	applyTimeout = 1500 * time.Millisecond
)

// Mirror implements presence.Observer. Transitions are queued and applied
// by Run; a full queue drops the transition.
type Mirror struct {
	rdc    *redis.Client
	prefix string
	queue  chan presence.Transition
}

var _ presence.Observer = (*Mirror)(nil)

func New(rdc *redis.Client, prefix string) *Mirror {
	return &Mirror{
		rdc:    rdc,
		prefix: prefix,
		queue:  make(chan presence.Transition, queueSize),
	}
}

func (m *Mirror) RoomsKey() string { return m.prefix + ":rooms" }
func (m *Mirror) RoomKey(room string) string { return m.prefix + ":room:" + room }
func (m *Mirror) PresenceChannel() string { return m.prefix + ":presence" }

func (m *Mirror) Observe(t presence.Transition) {
	select {
	case m.queue <- t:
	default:
		zap.L().Debug("presencemirror.transition_lost", zap.String("conn", t.Participant.ID))
	}
}

// Run applies queued transitions until ctx is done.
func (m *Mirror) Run(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-m.queue:
				actx, cancel := context.WithTimeout(ctx, applyTimeout)
				if err := m.apply(actx, t); err != nil {
					zap.L().Warn("presencemirror.apply", zap.Error(err))
				}
				cancel()
			}
		}
	}()
}

// apply writes one transition in a single MULTI/EXEC:
//
//	HDEL <prefix>:room:<previous> <id>
//	HSET <prefix>:room:<room> <id> <name>      (joins only)
//	DEL  <prefix>:rooms
//	SADD <prefix>:rooms <active rooms...>
//	PUBLISH <prefix>:presence <transition json>
func (m *Mirror) apply(ctx context.Context, t presence.Transition) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return err
	}
	rooms := slices.Clone(t.ActiveRooms)
	slices.Sort(rooms)

	p := t.Participant
	_, err = m.rdc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		switch t.Kind {
		case presence.TransitionJoined:
			if t.PreviousRoom != "" {
				pipe.HDel(ctx, m.RoomKey(t.PreviousRoom), p.ID)
			}
			pipe.HSet(ctx, m.RoomKey(p.Room), p.ID, p.Name)
		case presence.TransitionDisconnected:
			pipe.HDel(ctx, m.RoomKey(p.Room), p.ID)
		}

		pipe.Del(ctx, m.RoomsKey())
		if len(rooms) > 0 {
			members := make([]any, len(rooms))
			for i, r := range rooms {
				members[i] = r
			}
			pipe.SAdd(ctx, m.RoomsKey(), members...)
		}
		pipe.Publish(ctx, m.PresenceChannel(), payload)
		return nil
	})
	return err
}
