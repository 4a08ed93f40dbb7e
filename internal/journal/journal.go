// Package journal keeps an append-only audit trail of presence transitions
// in Postgres. Chat messages are never written.
package journal

import (
	"context"
	"database/sql"
	"time"

	"chatroomgo/internal/presence"

	"go.uber.org/zap"
)

const (
	queueSize   = 512
	maxBatch    = 100
	execTimeout = 3 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS presence_events (
    id            BIGSERIAL PRIMARY KEY,
    kind          TEXT        NOT NULL,
    conn_id       TEXT        NOT NULL,
    display_name  TEXT        NOT NULL,
    room          TEXT        NOT NULL,
    previous_room TEXT        NOT NULL DEFAULT '',
    occurred_at   TIMESTAMPTZ NOT NULL
)`

const insertEvent = `INSERT INTO presence_events
	(kind, conn_id, display_name, room, previous_room, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Journal implements presence.Observer.
type Journal struct {
	db    *sql.DB
	queue chan presence.Transition
}

var _ presence.Observer = (*Journal)(nil)

func New(db *sql.DB) *Journal {
	return &Journal{db: db, queue: make(chan presence.Transition, queueSize)}
}

// EnsureSchema creates the events table when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (j *Journal) Observe(t presence.Transition) {
	select {
	case j.queue <- t:
	default:
		zap.L().Debug("journal.transition_lost", zap.String("conn", t.Participant.ID))
	}
}

// Run persists queued transitions in batches until ctx is done.
func (j *Journal) Run(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-j.queue:
				batch := j.drain(t)
				pctx, cancel := context.WithTimeout(ctx, execTimeout)
				if err := persist(pctx, j.db, batch); err != nil {
					zap.L().Error("journal.persist", zap.Int("events", len(batch)), zap.Error(err))
				}
				cancel()
			}
		}
	}()
}

// drain collects first plus whatever is already queued, up to maxBatch.
func (j *Journal) drain(first presence.Transition) []presence.Transition {
	batch := []presence.Transition{first}
	for len(batch) < maxBatch {
		select {
		case t := <-j.queue:
			batch = append(batch, t)
		default:
			return batch
		}
	}
	return batch
}

func persist(ctx context.Context, db *sql.DB, batch []presence.Transition) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range batch {
		p := t.Participant
		if _, err := tx.ExecContext(ctx, insertEvent,
			string(t.Kind), p.ID, p.Name, p.Room, t.PreviousRoom, t.At.UTC()); err != nil {
			return err
		}
	}
	return tx.Commit()
}
