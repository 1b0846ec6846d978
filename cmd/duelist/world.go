package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/sauerbraten/duelist/pkg/chat"
	"github.com/sauerbraten/duelist/pkg/duel"
	"github.com/sauerbraten/duelist/pkg/geom"
)

const maxHealth = 100

// Avatar is the world state of one player. It outlives the connection, like a player
// file on a game server, so duel tags survive a reconnect.
type Avatar struct {
	Position geom.Position
	Health   int
	Armor    map[duel.ArmorSlot]duel.Item
	Slots    map[int]duel.Item
	Locks    map[string]duel.LockPolicy
	Tags     map[string]bool
}

func newAvatar(spawn geom.Position) *Avatar {
	a := &Avatar{
		Position: spawn,
		Health:   maxHealth,
		Tags:     map[string]bool{},
	}
	a.clearInventory()
	return a
}

func (a *Avatar) clearInventory() {
	a.Armor = map[duel.ArmorSlot]duel.Item{}
	a.Slots = map[int]duel.Item{}
	a.Locks = map[string]duel.LockPolicy{}
}

// World is the simulated game world the duel engine runs in. It implements duel.Host and
// must only be used from the main loop.
type World struct {
	clients    *ClientManager
	lobby      geom.Position
	avatars    map[duel.PlayerID]*Avatar
	containers map[geom.Position]duel.Loadout
	log        zerolog.Logger
}

var (
	_ duel.Host    = &World{}
	_ duel.Stocker = &World{}
)

func NewWorld(clients *ClientManager, lobby geom.Position, log zerolog.Logger) *World {
	return &World{
		clients:    clients,
		lobby:      lobby,
		avatars:    map[duel.PlayerID]*Avatar{},
		containers: map[geom.Position]duel.Loadout{},
		log:        log,
	}
}

// PutContainer fills the container at pos with l.
func (w *World) PutContainer(pos geom.Position, l duel.Loadout) { w.containers[pos] = l }

// StockContainer copies what the player wears and carries into the container at pos.
func (w *World) StockContainer(from duel.PlayerID, pos geom.Position) (duel.Loadout, error) {
	if !pos.Valid() {
		return duel.Loadout{}, eris.Errorf("invalid container position %s", pos)
	}
	a := w.avatar(from)
	var l duel.Loadout
	for slot := duel.Head; slot <= duel.Offhand; slot++ {
		if item, ok := a.Armor[slot]; ok {
			l.Armor = append(l.Armor, duel.ArmorPiece{Slot: slot, Item: item})
		}
	}
	slots := make([]int, 0, len(a.Slots))
	for slot := range a.Slots {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	for _, slot := range slots {
		l.Extras = append(l.Extras, duel.SlotItem{Slot: slot, Item: a.Slots[slot]})
	}
	w.PutContainer(pos, l)
	w.log.Info().Str("player", string(from)).Str("container", pos.String()).Int("items", len(l.Armor)+len(l.Extras)).Msg("stocked container")
	return l, nil
}

const inventorySlots = 36

// Give puts item into the player's first free inventory slot.
func (w *World) Give(id duel.PlayerID, item duel.Item) (int, error) {
	a := w.avatar(id)
	for slot := 0; slot < inventorySlots; slot++ {
		if _, taken := a.Slots[slot]; !taken {
			a.Slots[slot] = item
			return slot, nil
		}
	}
	return 0, eris.New("inventory is full")
}

func (w *World) avatar(id duel.PlayerID) *Avatar {
	a, ok := w.avatars[id]
	if !ok {
		a = newAvatar(w.lobby)
		w.avatars[id] = a
	}
	return a
}

func (w *World) Lookup(id duel.PlayerID) (duel.Player, bool) {
	c := w.clients.GetClientByID(id)
	if c == nil {
		return duel.Player{}, false
	}
	return c.player(), true
}

func (w *World) Players() []duel.Player {
	var players []duel.Player
	for _, c := range w.clients.Joined() {
		players = append(players, c.player())
	}
	return players
}

func (w *World) Teleport(id duel.PlayerID, pos geom.Position) {
	w.avatar(id).Position = pos
	w.SendMessage(id, chat.Gray("you are now at "+pos.String()))
}

func (w *World) Loadout(src duel.LoadoutSource) (duel.Loadout, error) {
	l, ok := w.containers[src.Container]
	if !ok {
		return duel.Loadout{}, eris.Errorf("no container at %s", src.Container)
	}
	return l, nil
}

func (w *World) EquipArmor(id duel.PlayerID, slot duel.ArmorSlot, item duel.Item) {
	w.avatar(id).Armor[slot] = item
}

func (w *World) PlaceItem(id duel.PlayerID, slot int, item duel.Item) {
	w.avatar(id).Slots[slot] = item
}

func (w *World) LockArmor(id duel.PlayerID, slot duel.ArmorSlot, lock duel.LockPolicy) {
	w.avatar(id).Locks["armor:"+slot.String()] = lock
}

func (w *World) LockItem(id duel.PlayerID, slot int, lock duel.LockPolicy) {
	w.avatar(id).Locks[fmt.Sprintf("slot:%d", slot)] = lock
}

func (w *World) ClearInventory(id duel.PlayerID) {
	a := w.avatar(id)
	a.clearInventory()
	a.Health = maxHealth
}

func (w *World) SetTag(id duel.PlayerID, tag string) { w.avatar(id).Tags[tag] = true }

func (w *World) RemoveTag(id duel.PlayerID, tag string) { delete(w.avatar(id).Tags, tag) }

func (w *World) Tags(id duel.PlayerID) []string {
	var tags []string
	for tag := range w.avatar(id).Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (w *World) SendMessage(id duel.PlayerID, msg string) {
	if c := w.clients.GetClientByID(id); c != nil {
		c.Send(msg)
	}
}

// RunCommand runs a host command for a player. "@s" stands for the player's name.
func (w *World) RunCommand(id duel.PlayerID, cmd string) {
	name := string(id)
	if c := w.clients.GetClientByID(id); c != nil {
		name = c.Name
	}
	cmd = strings.ReplaceAll(cmd, "@s", name)
	parts := strings.SplitN(cmd, " ", 2)

	switch parts[0] {
	case "say":
		if len(parts) > 1 {
			w.clients.Broadcast(nil, chat.Yellow(parts[1]))
		}
	case "heal":
		w.avatar(id).Health = maxHealth
	case "tell":
		if len(parts) > 1 {
			w.SendMessage(id, parts[1])
		}
	default:
		w.log.Debug().Str("player", string(id)).Str("command", cmd).Msg("ignoring unknown host command")
	}
}

// Describe summarises an avatar for the "whoami" command.
func (w *World) Describe(id duel.PlayerID) string {
	a := w.avatar(id)
	var items []string
	for slot := duel.Head; slot <= duel.Offhand; slot++ {
		if item, ok := a.Armor[slot]; ok {
			items = append(items, fmt.Sprintf("%s: %s", slot, item.ID))
		}
	}
	slots := make([]int, 0, len(a.Slots))
	for slot := range a.Slots {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	for _, slot := range slots {
		item := a.Slots[slot]
		items = append(items, fmt.Sprintf("#%d: %dx %s", slot, item.Count, item.ID))
	}
	inventory := "empty inventory"
	if len(items) > 0 {
		inventory = strings.Join(items, ", ")
	}
	return fmt.Sprintf("at %s, %d health, %s", a.Position, a.Health, inventory)
}
