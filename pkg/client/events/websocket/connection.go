package websocket

import (
	gorillaws "github.com/gorilla/websocket"

	"github.com/virtengine/virtengine-sub005/pkg/client"
)

var _ client.Connection = (*websocketConn)(nil)

// websocketConn wraps a gorilla websocket connection to implement the
// transport-agnostic client.Connection interface.
type websocketConn struct {
	conn *gorillaws.Conn
}

// Receive implements client.Connection. It blocks until a message is received
// or the connection errors.
func (wsConn *websocketConn) Receive() ([]byte, error) {
	_, msg, err := wsConn.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Send implements client.Connection.
func (wsConn *websocketConn) Send(msg []byte) error {
	return wsConn.conn.WriteMessage(gorillaws.TextMessage, msg)
}

// Close implements client.Connection. Closing unblocks any concurrent
// Receive with an error.
func (wsConn *websocketConn) Close() error {
	return wsConn.conn.Close()
}
