package duel

import "github.com/sauerbraten/duelist/pkg/geom"

// Host is what the duel engine needs from the game server it runs in.
type Host interface {
	// Lookup returns online players only.
	Lookup(PlayerID) (Player, bool)
	Players() []Player

	Teleport(PlayerID, geom.Position)
	Loadout(LoadoutSource) (Loadout, error)
	EquipArmor(PlayerID, ArmorSlot, Item)
	PlaceItem(PlayerID, int, Item)
	LockArmor(PlayerID, ArmorSlot, LockPolicy)
	LockItem(PlayerID, int, LockPolicy)
	ClearInventory(PlayerID)

	SetTag(PlayerID, string)
	RemoveTag(PlayerID, string)
	Tags(PlayerID) []string

	SendMessage(PlayerID, string)
	RunCommand(PlayerID, string)
}

// Stocker is implemented by hosts that can fill a kit's container from what a player
// carries, so kits registered at runtime can be granted.
type Stocker interface {
	StockContainer(from PlayerID, at geom.Position) (Loadout, error)
}

// Permissions decides who may duel.
type Permissions interface {
	Allowed(player string) bool
}

type allowEveryone struct{}

func (allowEveryone) Allowed(string) bool { return true }
