package main

import (
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/sauerbraten/duelist/pkg/duel"
	"github.com/sauerbraten/duelist/pkg/privilege"
)

const sendBufferSize = 64

type Client struct {
	CN        uint32
	InUse     bool
	Joined    bool // sent a valid name
	ID        duel.PlayerID
	Name      string
	Privilege privilege.ID

	conn *websocket.Conn
	send chan []byte
}

func (c *Client) player() duel.Player { return duel.Player{ID: c.ID, Name: c.Name} }

// Send queues a chat line for the client. Lines are dropped if the client doesn't keep up.
func (c *Client) Send(msg string) {
	if !c.InUse {
		return
	}
	select {
	case c.send <- []byte(msg):
	default:
	}
}

func (c *Client) reset() {
	c.InUse = false
	c.Joined = false
	c.ID = ""
	c.Name = ""
	c.Privilege = privilege.None
	c.conn = nil
	c.send = nil
}

type ClientManager struct {
	cs  []*Client
	log zerolog.Logger
}

// Add links a connection to a client object. Unused client objects are re-used, so CNs
// stay low.
func (cm *ClientManager) Add(conn *websocket.Conn) *Client {
	for _, c := range cm.cs {
		if !c.InUse {
			c.InUse = true
			c.conn = conn
			c.send = make(chan []byte, sendBufferSize)
			return c
		}
	}

	c := &Client{
		CN:    uint32(len(cm.cs)),
		InUse: true,
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
	}
	cm.cs = append(cm.cs, c)
	return c
}

func (cm *ClientManager) GetClientByCN(cn uint32) *Client {
	if int(cn) >= len(cm.cs) {
		return nil
	}
	return cm.cs[cn]
}

// GetClientByID returns the joined client playing as id.
func (cm *ClientManager) GetClientByID(id duel.PlayerID) *Client {
	for _, c := range cm.cs {
		if c.InUse && c.Joined && c.ID == id {
			return c
		}
	}
	return nil
}

// Joined returns the joined clients in CN order.
func (cm *ClientManager) Joined() []*Client {
	var joined []*Client
	for _, c := range cm.cs {
		if c.InUse && c.Joined {
			joined = append(joined, c)
		}
	}
	return joined
}

// Broadcast sends msg to all joined clients except those exclude matches.
func (cm *ClientManager) Broadcast(exclude func(*Client) bool, msg string) {
	for _, c := range cm.Joined() {
		if exclude != nil && exclude(c) {
			continue
		}
		c.Send(msg)
	}
}

func exclude(c *Client) func(*Client) bool {
	return func(_c *Client) bool {
		return _c == c
	}
}

func (cm *ClientManager) NumberOfClientsConnected() int {
	n := 0
	for _, c := range cm.cs {
		if c.InUse {
			n++
		}
	}
	return n
}

// Disconnect closes the client's channel to its writer, which closes the connection.
func (cm *ClientManager) Disconnect(c *Client) {
	if !c.InUse {
		return
	}
	cm.log.Info().Uint32("cn", c.CN).Str("name", c.Name).Msg("disconnected")
	close(c.send)
	c.reset()
}

func (cm *ClientManager) GetClientByConn(conn *websocket.Conn) *Client {
	if conn == nil {
		return nil
	}
	for _, c := range cm.cs {
		if c.InUse && c.conn == conn {
			return c
		}
	}
	return nil
}
