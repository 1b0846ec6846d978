package duel

// PlayerID is the stable identity the host assigns to a player.
type PlayerID string

// Player is a reference to a player of the host. The player may be offline.
type Player struct {
	ID   PlayerID
	Name string
}

func (p Player) String() string {
	if p.Name == "" {
		return string(p.ID)
	}
	return p.Name
}

// tags put on participants, so a restarted server can tell who was dueling
const (
	TagInDuel      = "duel"
	TagRunning     = "duel_running"
	TagArenaPrefix = "duel_arena:"
)
