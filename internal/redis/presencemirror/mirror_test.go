package presencemirror

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"chatroomgo/internal/presence"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)

func payload(t *testing.T, tr presence.Transition) []byte {
	t.Helper()
	raw, err := json.Marshal(tr)
	require.NoError(t, err)
	return raw
}

func TestMirror_ApplySwitch(t *testing.T) {
	req := require.New(t)
	db, mock := redismock.NewClientMock()
	m := New(db, "chat")

	tr := presence.Transition{
		Kind:         presence.TransitionJoined,
		Participant:  presence.Participant{ID: "c1", Name: "alice", Room: "dev"},
		PreviousRoom: "lobby",
		ActiveRooms:  []string{"lobby", "dev"},
		At:           at,
	}

	mock.ExpectTxPipeline()
	mock.ExpectHDel("chat:room:lobby", "c1").SetVal(1)
	mock.ExpectHSet("chat:room:dev", "c1", "alice").SetVal(1)
	mock.ExpectDel("chat:rooms").SetVal(1)
	mock.ExpectSAdd("chat:rooms", "dev", "lobby").SetVal(2)
	mock.ExpectPublish("chat:presence", payload(t, tr)).SetVal(0)
	mock.ExpectTxPipelineExec()

	req.NoError(m.apply(context.Background(), tr))
	req.NoError(mock.ExpectationsWereMet())
}

func TestMirror_ApplyLastDisconnect(t *testing.T) {
	req := require.New(t)
	db, mock := redismock.NewClientMock()
	m := New(db, "chat")

	tr := presence.Transition{
		Kind:        presence.TransitionDisconnected,
		Participant: presence.Participant{ID: "c1", Name: "alice", Room: "dev"},
		ActiveRooms: []string{},
		At:          at,
	}

	// No SADD when no room is left
	mock.ExpectTxPipeline()
	mock.ExpectHDel("chat:room:dev", "c1").SetVal(1)
	mock.ExpectDel("chat:rooms").SetVal(1)
	mock.ExpectPublish("chat:presence", payload(t, tr)).SetVal(0)
	mock.ExpectTxPipelineExec()

	req.NoError(m.apply(context.Background(), tr))
	req.NoError(mock.ExpectationsWereMet())
}

func TestMirror_RunDrainsQueue(t *testing.T) {
	req := require.New(t)
	db, mock := redismock.NewClientMock()
	m := New(db, "chat")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := presence.Transition{
		Kind:        presence.TransitionJoined,
		Participant: presence.Participant{ID: "c1", Name: "alice", Room: "lobby"},
		ActiveRooms: []string{"lobby"},
		At:          at,
	}
	mock.ExpectTxPipeline()
	mock.ExpectHSet("chat:room:lobby", "c1", "alice").SetVal(1)
	mock.ExpectDel("chat:rooms").SetVal(0)
	mock.ExpectSAdd("chat:rooms", "lobby").SetVal(1)
	mock.ExpectPublish("chat:presence", payload(t, tr)).SetVal(0)
	mock.ExpectTxPipelineExec()

	m.Run(ctx)
	m.Observe(tr)

	req.Eventually(func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
}

func TestMirror_ObserveNeverBlocks(t *testing.T) {
	db, _ := redismock.NewClientMock()
	m := New(db, "chat")

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize+10; i++ {
			m.Observe(presence.Transition{Kind: presence.TransitionJoined})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Observe blocked on a full queue")
	}
	require.Len(t, m.queue, queueSize)
}
