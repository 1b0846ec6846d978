package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxLineLen = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type connEventType int

const (
	eventConnect connEventType = iota
	eventReceive
	eventDisconnect
)

// connEvent is what the connection goroutines report to the main loop. Clients are only
// touched by the main loop.
type connEvent struct {
	Type connEventType
	Conn *websocket.Conn
	Line string
}

type transport struct {
	events chan connEvent
	log    zerolog.Logger
}

func newTransport(log zerolog.Logger) *transport {
	return &transport{
		events: make(chan connEvent),
		log:    log,
	}
}

func (t *transport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	t.events <- connEvent{Type: eventConnect, Conn: conn}
	t.read(conn)
}

func (t *transport) read(conn *websocket.Conn) {
	defer func() {
		t.events <- connEvent{Type: eventDisconnect, Conn: conn}
	}()

	conn.SetReadLimit(maxLineLen)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				t.log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
		t.events <- connEvent{Type: eventReceive, Conn: conn, Line: string(data)}
	}
}

// write sends queued lines until send is closed, then closes the connection.
func write(conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
