package announcer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const maxAnnouncementLen = 1024

type Announcer interface {
	Announce(text string)
}

// Announcement is the JSON form accepted on the channel. Plain-text
// payloads are accepted as well.
type Announcement struct {
	Text string `json:"text"`
}

// Channel returns the channel operators publish announcements on.
func Channel(prefix string) string { return prefix + ":announce" }

// Run relays every message published on the announce channel to all
// connected clients as a system notice. It blocks until ctx is done.
func Run(ctx context.Context, rdb *redis.Client, prefix string, a Announcer) {
	pubsub := rdb.Subscribe(ctx, Channel(prefix))
	defer pubsub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			handle(m.Payload, a)
		}
	}
}

func handle(payload string, a Announcer) {
	text, ok := parse(payload)
	if !ok {
		zap.L().Debug("announcer.skip_empty")
		return
	}
	a.Announce(text)
}

func parse(payload string) (string, bool) {
	text := payload
	var msg Announcement
	if strings.HasPrefix(strings.TrimSpace(payload), "{") && json.Unmarshal([]byte(payload), &msg) == nil {
		text = msg.Text
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if len(text) > maxAnnouncementLen {
		text = text[:maxAnnouncementLen]
	}
	return text, true
}
