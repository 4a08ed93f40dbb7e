package ws

import (
	"encoding/json"
	"fmt"

	"chatroomgo/internal/presence"
)

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "enterRoom"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

const (
	EventEnterRoom = "enterRoom"
	EventMessage   = "message"
	EventActivity  = "activity"
	EventUserList  = "userList"
	EventRoomList  = "roomList"
	EventError     = "error"
)

// ──────────────────────────── Inbound DTOs ──────────────────────────────────

// EnterRoomRequest is the body for "enterRoom".
type EnterRoomRequest struct {
	Name string `json:"name" validate:"required,max=64"`
	Room string `json:"room" validate:"required,max=64"`
}

// MessageRequest is the body for "message".
type MessageRequest struct {
	Name string `json:"name" validate:"required,max=64"`
	Text string `json:"text" validate:"required,max=4096"`
}

// ActivityRequest is the body for "activity".
type ActivityRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

// ──────────────────────────── Outbound DTOs ─────────────────────────────────

// MessageBody carries welcome, system and chat messages.
type MessageBody struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Time string `json:"time"`
}

type UserListBody struct {
	Room  string                 `json:"room"`
	Users []presence.Participant `json:"users"`
}

type RoomListBody struct {
	Rooms []string `json:"rooms"`
}

type ActivityBody struct {
	Name string `json:"name"`
}

// ErrorBody is returned for failures.
type ErrorBody struct {
	Error string `json:"error"`
}

func encodeEnvelope(event string, body any) (json.RawMessage, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Body: raw})
}

func encodeNotice(n presence.Notice) (json.RawMessage, error) {
	switch n.Kind {
	case presence.NoticeWelcome, presence.NoticeSystem, presence.NoticeChat:
		return encodeEnvelope(EventMessage, MessageBody{Name: n.Name, Text: n.Text, Time: n.Time})
	case presence.NoticeMemberList:
		return encodeEnvelope(EventUserList, UserListBody{Room: n.Room, Users: n.Members})
	case presence.NoticeRoomList:
		return encodeEnvelope(EventRoomList, RoomListBody{Rooms: n.Rooms})
	case presence.NoticeActivity:
		return encodeEnvelope(EventActivity, ActivityBody{Name: n.Name})
	}
	return nil, fmt.Errorf("unsupported notice kind %q", n.Kind)
}
