package duel

import (
	"strings"

	"github.com/sauerbraten/duelist/pkg/geom"
)

type LockPolicy int

const (
	LockNone      LockPolicy = iota
	LockSlot                 // item is locked in its slot
	LockInventory            // item can't be dropped, but moved around
)

func ParseLockPolicy(s string) (LockPolicy, bool) {
	switch strings.ToLower(s) {
	case "", "none":
		return LockNone, true
	case "slot", "lock_in_slot":
		return LockSlot, true
	case "inventory", "lock_in_inventory":
		return LockInventory, true
	default:
		return LockNone, false
	}
}

func (p LockPolicy) String() string {
	switch p {
	case LockSlot:
		return "slot"
	case LockInventory:
		return "inventory"
	default:
		return "none"
	}
}

type ArmorSlot int

const (
	Head ArmorSlot = iota
	Chest
	Legs
	Feet
	Offhand
)

func (s ArmorSlot) String() string {
	switch s {
	case Head:
		return "head"
	case Chest:
		return "chest"
	case Legs:
		return "legs"
	case Feet:
		return "feet"
	case Offhand:
		return "offhand"
	default:
		return "unknown"
	}
}

func ParseArmorSlot(s string) (ArmorSlot, bool) {
	for slot := Head; slot <= Offhand; slot++ {
		if strings.EqualFold(slot.String(), s) {
			return slot, true
		}
	}
	return 0, false
}

type Item struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

type ArmorPiece struct {
	Slot ArmorSlot
	Item Item
}

// SlotItem is an item placed in a hotbar or inventory slot.
type SlotItem struct {
	Slot int
	Item Item
}

// Loadout is what a kit's source resolves to at grant time.
type Loadout struct {
	Armor  []ArmorPiece
	Extras []SlotItem
}

// LoadoutSource says where a kit's items are copied from: a container in the world.
type LoadoutSource struct {
	Container geom.Position `json:"container"`
}

type Kit struct {
	Name   string
	Source LoadoutSource
	Lock   LockPolicy
}

// grant equips armor first, then the extra slots, and only then applies the lock policy,
// since some hosts refuse to place items into locked slots.
func grant(h Host, p PlayerID, l Loadout, lock LockPolicy) {
	for _, piece := range l.Armor {
		h.EquipArmor(p, piece.Slot, piece.Item)
	}
	for _, extra := range l.Extras {
		h.PlaceItem(p, extra.Slot, extra.Item)
	}
	if lock == LockNone {
		return
	}
	for _, piece := range l.Armor {
		h.LockArmor(p, piece.Slot, lock)
	}
	for _, extra := range l.Extras {
		h.LockItem(p, extra.Slot, lock)
	}
}
