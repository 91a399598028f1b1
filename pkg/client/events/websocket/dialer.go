package websocket

import (
	"context"

	gorillaws "github.com/gorilla/websocket"

	"github.com/virtengine/virtengine-sub005/pkg/client"
)

var _ client.Dialer = (*websocketDialer)(nil)

// websocketDialer dials websocket connections using the default gorilla
// dialer.
type websocketDialer struct{}

// NewWebsocketDialer returns the default websocket dialer.
func NewWebsocketDialer() client.Dialer {
	return &websocketDialer{}
}

// DialContext implements client.Dialer.
func (wsDialer *websocketDialer) DialContext(ctx context.Context, urlStr string) (client.Connection, error) {
	conn, _, err := gorillaws.DefaultDialer.DialContext(ctx, urlStr, nil)
	if err != nil {
		return nil, err
	}
	return &websocketConn{conn: conn}, nil
}
