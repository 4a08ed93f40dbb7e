package ws

import (
	"github.com/gorilla/websocket"
)

// client is one upgraded websocket. Frames for it are queued on send and
// written by its writer goroutine only; send is closed by the Hub.
type client struct {
	id      string
	rawConn *websocket.Conn
	send    chan []byte
}

func newClient(id string, rawConn *websocket.Conn, buffer int) *client {
	return &client{
		id:      id,
		rawConn: rawConn,
		send:    make(chan []byte, buffer),
	}
}
