package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/sauerbraten/duelist/pkg/chat"
	"github.com/sauerbraten/duelist/pkg/duel"
	"github.com/sauerbraten/duelist/pkg/duelban"
	"github.com/sauerbraten/duelist/pkg/duelcmd"
	"github.com/sauerbraten/duelist/pkg/pausableticker"
	"github.com/sauerbraten/duelist/pkg/privilege"
	"github.com/sauerbraten/duelist/pkg/prompt"
)

const maxNameLength = 16

type State struct {
	UpSince    time.Time
	NumClients func() int // number of clients connected
}

type Server struct {
	*State
	Config  *Config
	Clients *ClientManager
	World   *World
	Engine  *duel.Engine
	Duels   *duelcmd.Handler
	Prompts *prompt.Board
	Forms   *formPresenter
	Bans    *duelban.BanManager
	Clock   *gameClock
	Ticker  *pausableticker.Ticker
	log     zerolog.Logger
}

func (s *Server) Connect(conn *websocket.Conn) {
	c := s.Clients.Add(conn)
	go write(conn, c.send)
	c.Send("welcome! what's your name?")
	s.log.Debug().Uint32("cn", c.CN).Str("remote", conn.RemoteAddr().String()).Msg("connected")
}

// Join is called with a new client's first line, its name.
func (s *Server) Join(c *Client, name string) {
	name = chat.Filter(chat.Sanitize(name), false, '-', '_')
	if name == "" || len(name) > maxNameLength {
		c.Send(chat.Fail("names are 1 to 16 letters, digits, '-' or '_', try again"))
		return
	}
	id := duel.PlayerID(strings.ToLower(name))
	if s.Clients.GetClientByID(id) != nil {
		c.Send(chat.Fail("that name is taken, try another one"))
		return
	}

	c.Joined = true
	c.ID = id
	c.Name = name
	c.Privilege = s.Config.privilegeOf(string(id))

	s.log.Info().Uint32("cn", c.CN).Str("name", name).Str("privilege", c.Privilege.String()).Msg("join")
	s.Clients.Broadcast(exclude(c), chat.Gray(name+" joined"))
	if s.Config.MessageOfTheDay != "" {
		c.Send(s.Config.MessageOfTheDay)
	}
	c.Send("type " + chat.Yellow("#duel help") + " for duel commands")

	// clear duel state left behind by a restart or an interrupted duel
	if !s.Engine.Rejoin(id) && !s.Engine.InSession(id) {
		s.World.Teleport(id, s.World.lobby)
	}
}

func (s *Server) Disconnect(c *Client) {
	if c.Joined {
		id, name := c.ID, c.Name
		s.Prompts.Disconnect(string(id))
		c.Joined = false // offline for the engine from here on
		s.Engine.HandleDisconnect(id)
		s.Clients.Broadcast(exclude(c), chat.Gray(name+" left"))
	}
	s.Clients.Disconnect(c)
}

func (s *Server) HandleLine(c *Client, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if !c.Joined {
		s.Join(c, line)
		return
	}
	if strings.HasPrefix(line, "#") {
		s.HandleCommand(c, line[1:])
		return
	}
	s.Clients.Broadcast(nil, c.Name+": "+chat.Sanitize(line))
}

func (s *Server) actor(c *Client) duelcmd.Actor {
	return duelcmd.Actor{Player: c.player(), Privilege: c.Privilege}
}

func (s *Server) HandleCommand(c *Client, msg string) {
	parts := strings.Fields(msg)
	if len(parts) == 0 {
		return
	}
	cmd := strings.ToLower(parts[0])

	// "#3" answers the open form
	if n, err := strconv.Atoi(cmd); err == nil {
		s.answerForm(c, n)
		return
	}

	switch cmd {
	case "help", "commands":
		commands := []string{
			chat.Green("duel") + " ...",
			chat.Green("hit") + " <player>",
			chat.Green("die"),
			chat.Green("whoami"),
			chat.Green("who"),
		}
		if c.Privilege.CanManageArenas() {
			commands = append(commands, chat.Green("give")+" <item> [count]", chat.Green("wear")+" <slot> <item>")
		}
		if c.Privilege == privilege.Admin {
			commands = append(commands, chat.Green("pause"), chat.Green("resume"), chat.Green("sweep"), chat.Green("info"))
		}
		c.Send("available commands: " + strings.Join(commands, ", "))

	case "duel", "d":
		s.Duels.Handle(s.actor(c), parts[1:])

	case "hit", "attack":
		if len(parts) < 2 {
			c.Send(chat.Fail("usage: #hit <player>"))
			return
		}
		if err := s.hitByName(c, parts[1]); err != nil {
			c.Send(chat.Fail(err.Error()))
		}

	case "die", "kill":
		s.suicide(c)

	case "whoami", "me":
		c.Send(s.World.Describe(c.ID))

	case "who", "players":
		var names []string
		for _, p := range s.World.Players() {
			names = append(names, p.Name)
		}
		c.Send("online: " + chat.List(names))

	case "give":
		s.give(c, parts[1:])

	case "wear":
		s.wear(c, parts[1:])

	case "info", "status":
		if c.Privilege != privilege.Admin {
			c.Send(chat.Fail("you are not allowed to do that"))
			return
		}
		c.Send(s.info())

	case "pause":
		s.pause(c)

	case "resume", "unpause":
		s.resume(c)

	case "sweep":
		if c.Privilege != privilege.Admin {
			c.Send(chat.Fail("you are not allowed to do that"))
			return
		}
		c.Send("cleared stale duel state of " + strconv.Itoa(s.Engine.SweepStale()) + " players")

	default:
		c.Send(chat.Fail("unknown command"))
	}
}

func (s *Server) answerForm(c *Client, n int) {
	if n == 0 {
		if !s.Prompts.Cancel(string(c.ID)) {
			c.Send(chat.Fail("nothing to cancel"))
		}
		return
	}
	if err := s.Prompts.Answer(string(c.ID), n-1); err != nil {
		c.Send(chat.Fail(err.Error()))
	}
}

func (s *Server) pause(c *Client) {
	if c.Privilege != privilege.Admin {
		c.Send(chat.Fail("you are not allowed to do that"))
		return
	}
	if !s.Clock.Pause() {
		return
	}
	s.Ticker.Pause()
	s.Forms.Pause()
	s.log.Info().Str("by", c.Name).Msg("paused")
	s.Clients.Broadcast(nil, chat.Orange(c.Name+" paused the server"))
}

func (s *Server) resume(c *Client) {
	if c.Privilege != privilege.Admin {
		c.Send(chat.Fail("you are not allowed to do that"))
		return
	}
	if !s.Clock.Resume() {
		return
	}
	s.Ticker.Resume()
	s.Forms.Resume()
	s.log.Info().Str("by", c.Name).Msg("resumed")
	s.Clients.Broadcast(nil, chat.Orange(c.Name+" resumed the server"))
}

func (s *Server) info() string {
	paused := ""
	if s.Clock.paused {
		paused = ", paused"
	}
	return fmt.Sprintf("up for %s, %d clients connected, %d duels running, %d queued%s",
		time.Since(s.UpSince).Round(time.Second),
		s.NumClients(),
		s.Engine.Tracker().LiveCount(),
		s.Engine.Queue().Len(),
		paused,
	)
}

// give and wear let arena managers put together the inventory a new kit is stocked from.
func (s *Server) give(c *Client, args []string) {
	if !c.Privilege.CanManageArenas() {
		c.Send(chat.Fail("you are not allowed to do that"))
		return
	}
	if len(args) == 0 {
		c.Send(chat.Fail("usage: #give <item> [count]"))
		return
	}
	count := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			c.Send(chat.Fail("count must be a positive number"))
			return
		}
		count = n
	}
	slot, err := s.World.Give(c.ID, duel.Item{ID: args[0], Count: count})
	if err != nil {
		c.Send(chat.Fail(err.Error()))
		return
	}
	c.Send(fmt.Sprintf("put %dx %s into slot #%d", count, args[0], slot))
}

func (s *Server) wear(c *Client, args []string) {
	if !c.Privilege.CanManageArenas() {
		c.Send(chat.Fail("you are not allowed to do that"))
		return
	}
	if len(args) < 2 {
		c.Send(chat.Fail("usage: #wear <head|chest|legs|feet|offhand> <item>"))
		return
	}
	slot, ok := duel.ParseArmorSlot(args[0])
	if !ok {
		c.Send(chat.Fail("unknown armor slot '" + args[0] + "'"))
		return
	}
	s.World.EquipArmor(c.ID, slot, duel.Item{ID: args[1], Count: 1})
	c.Send(fmt.Sprintf("you now wear %s (%s)", args[1], slot))
}
