package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sauerbraten/duelist/pkg/chat"
	"github.com/sauerbraten/duelist/pkg/geom"
)

const (
	reach        = 32.0 // blocks
	baseDamage   = 20
	armorBlocked = 3 // damage blocked per equipped armor piece
)

var (
	errOutOfReach = eris.New("that player is out of reach")
	errNoTarget   = eris.New("that player is not online")
)

// Hit lets attacker hit victim once. The duel engine hears about the hit and, if the
// victim's health runs out, about the elimination.
func (s *Server) Hit(attacker, victim *Client) error {
	if attacker == victim {
		return eris.New("you can't hit yourself")
	}
	a, v := s.World.avatar(attacker.ID), s.World.avatar(victim.ID)
	if geom.Distance(a.Position, v.Position) > reach {
		return errOutOfReach
	}

	damage := baseDamage - armorBlocked*len(v.Armor)
	if damage < 1 {
		damage = 1
	}
	v.Health -= damage
	s.Engine.HandleAttack(attacker.ID, victim.ID)

	if v.Health > 0 {
		victim.Send(chat.Red(fmt.Sprintf("%s hit you, %d health left", attacker.Name, v.Health)))
		attacker.Send(fmt.Sprintf("you hit %s, %d health left", victim.Name, v.Health))
		return nil
	}

	v.Health = maxHealth
	s.Clients.Broadcast(nil, chat.Gray(fmt.Sprintf("%s was eliminated by %s", victim.Name, attacker.Name)))
	inDuel := s.Engine.InSession(victim.ID)
	s.Engine.HandleElimination(victim.ID, attacker.ID)
	if !inDuel {
		// respawn; duelists are moved out by the duel cleanup
		s.World.Teleport(victim.ID, s.World.lobby)
	}
	return nil
}

// hitByName accepts a name, an id or a client number.
func (s *Server) hitByName(attacker *Client, name string) error {
	if cn, err := strconv.ParseUint(name, 10, 32); err == nil {
		if c := s.Clients.GetClientByCN(uint32(cn)); c != nil && c.Joined {
			return s.Hit(attacker, c)
		}
		return errNoTarget
	}
	for _, c := range s.Clients.Joined() {
		if c.Name == name || string(c.ID) == name {
			return s.Hit(attacker, c)
		}
	}
	return errNoTarget
}

// suicide eliminates a player without a killer, e.g. by falling into lava.
func (s *Server) suicide(c *Client) {
	s.World.avatar(c.ID).Health = maxHealth
	s.Clients.Broadcast(nil, chat.Gray(c.Name+" died"))
	inDuel := s.Engine.InSession(c.ID)
	s.Engine.HandleElimination(c.ID, "")
	if !inDuel {
		s.World.Teleport(c.ID, s.World.lobby)
	}
}
