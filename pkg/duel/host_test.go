package duel

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sauerbraten/duelist/pkg/geom"
	"github.com/sauerbraten/duelist/pkg/score"
)

type fakeHost struct {
	online     map[PlayerID]Player
	joined     []PlayerID
	positions  map[PlayerID]geom.Position
	tags       map[PlayerID]map[string]bool
	messages   map[PlayerID][]string
	calls      map[PlayerID][]string
	commands   []string
	loadout    Loadout
	loadoutErr error
	broken     map[geom.Position]bool // containers that can't be read
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		online:    map[PlayerID]Player{},
		positions: map[PlayerID]geom.Position{},
		tags:      map[PlayerID]map[string]bool{},
		messages:  map[PlayerID][]string{},
		calls:     map[PlayerID][]string{},
		broken:    map[geom.Position]bool{},
		loadout: Loadout{
			Armor:  []ArmorPiece{{Slot: Chest, Item: Item{ID: "iron_chestplate", Count: 1}}},
			Extras: []SlotItem{{Slot: 0, Item: Item{ID: "iron_sword", Count: 1}}},
		},
	}
}

func (h *fakeHost) join(ids ...PlayerID) {
	for _, id := range ids {
		h.online[id] = Player{ID: id, Name: strings.ToUpper(string(id))}
		h.joined = append(h.joined, id)
	}
}

func (h *fakeHost) quit(id PlayerID) { delete(h.online, id) }

func (h *fakeHost) Lookup(id PlayerID) (Player, bool) {
	p, ok := h.online[id]
	return p, ok
}

func (h *fakeHost) Players() []Player {
	var players []Player
	for _, id := range h.joined {
		if p, ok := h.online[id]; ok {
			players = append(players, p)
		}
	}
	return players
}

func (h *fakeHost) Teleport(id PlayerID, pos geom.Position) { h.positions[id] = pos }

func (h *fakeHost) Loadout(src LoadoutSource) (Loadout, error) {
	if h.broken[src.Container] {
		return Loadout{}, fmt.Errorf("no container at %s", src.Container)
	}
	return h.loadout, h.loadoutErr
}

func (h *fakeHost) EquipArmor(id PlayerID, slot ArmorSlot, item Item) {
	h.calls[id] = append(h.calls[id], fmt.Sprintf("equip %s %s", slot, item.ID))
}

func (h *fakeHost) PlaceItem(id PlayerID, slot int, item Item) {
	h.calls[id] = append(h.calls[id], fmt.Sprintf("place %d %s", slot, item.ID))
}

func (h *fakeHost) LockArmor(id PlayerID, slot ArmorSlot, lock LockPolicy) {
	h.calls[id] = append(h.calls[id], fmt.Sprintf("lock %s %s", slot, lock))
}

func (h *fakeHost) LockItem(id PlayerID, slot int, lock LockPolicy) {
	h.calls[id] = append(h.calls[id], fmt.Sprintf("lock %d %s", slot, lock))
}

func (h *fakeHost) ClearInventory(id PlayerID) {
	h.calls[id] = append(h.calls[id], "clear")
}

func (h *fakeHost) SetTag(id PlayerID, tag string) {
	if h.tags[id] == nil {
		h.tags[id] = map[string]bool{}
	}
	h.tags[id][tag] = true
}

func (h *fakeHost) RemoveTag(id PlayerID, tag string) { delete(h.tags[id], tag) }

func (h *fakeHost) Tags(id PlayerID) []string {
	var tags []string
	for tag := range h.tags[id] {
		tags = append(tags, tag)
	}
	return tags
}

func (h *fakeHost) SendMessage(id PlayerID, msg string) {
	h.messages[id] = append(h.messages[id], msg)
}

func (h *fakeHost) RunCommand(id PlayerID, cmd string) {
	h.commands = append(h.commands, string(id)+": "+cmd)
}

// count returns how many messages to id contain substr.
func (h *fakeHost) count(id PlayerID, substr string) int {
	n := 0
	for _, msg := range h.messages[id] {
		if strings.Contains(msg, substr) {
			n++
		}
	}
	return n
}

type denyList map[string]bool

func (d denyList) Allowed(p string) bool { return !d[p] }

type fixture struct {
	engine *Engine
	host   *fakeHost
	ledger *score.Ledger
	now    time.Time
}

var (
	lobby     = geom.NewPosition(0, 64, 0, geom.DefaultRealm)
	container = geom.NewPosition(100, 60, 100, geom.DefaultRealm)
)

func testOptions() Options {
	return Options{
		Countdown:         3,
		CountdownInterval: time.Second,
		CleanupDelay:      2 * time.Second,
		RequestTTL:        60 * time.Second,
		StoreTimeout:      time.Second,
		Lobby:             lobby,
	}
}

func newFixture(t *testing.T, perms Permissions, arenas ...string) *fixture {
	t.Helper()
	f := &fixture{
		host:   newFakeHost(),
		ledger: score.NewLedger(score.NewMemory()),
		now:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	f.engine = NewEngine(f.host, f.ledger, perms, zerolog.Nop(), testOptions()).WithClock(func() time.Time { return f.now })

	require.NoError(t, f.engine.RegisterKit(Kit{Name: "swords", Source: LoadoutSource{Container: container}, Lock: LockSlot}))
	for _, name := range arenas {
		require.NoError(t, f.engine.RegisterArena(testArena(name)))
	}
	return f
}

func testArena(name string) Arena {
	off := 0.0
	for _, r := range name {
		off += float64(r)
	}
	return Arena{
		Name:    name,
		SpawnA:  geom.NewPosition(off, 70, 0, geom.DefaultRealm),
		SpawnB:  geom.NewPosition(off+20, 70, 0, geom.DefaultRealm),
		Exit:    geom.NewPosition(off, 80, 50, geom.DefaultRealm),
		Kit:     "swords",
		OnStart: []string{"effect clear @s"},
		OnEnd:   []string{"say gg"},
	}
}

// advance moves the clock forward by d and runs one tick.
func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
	f.engine.Tick(f.now)
}

// runCountdown ticks until the countdown is over.
func (f *fixture) runCountdown() {
	for i := 0; i < testOptions().Countdown; i++ {
		f.advance(testOptions().CountdownInterval)
	}
}

func (f *fixture) record(t *testing.T, p PlayerID) score.Record {
	t.Helper()
	r, err := f.ledger.Record(context.Background(), string(p))
	require.NoError(t, err)
	return r
}

// checkMembership asserts that no player is queued and in a session at the same time and
// that no arena holds more than one live session.
func (f *fixture) checkMembership(t *testing.T) {
	t.Helper()
	for _, p := range f.engine.Queue().Players() {
		require.False(t, f.engine.InSession(p), "%s is queued and in a session", p)
	}
	arenas := map[string]bool{}
	players := map[PlayerID]bool{}
	for _, s := range f.engine.Sessions() {
		require.False(t, arenas[s.Arena.Name], "arena %s bound twice", s.Arena.Name)
		arenas[s.Arena.Name] = true
		for _, p := range s.Participants() {
			require.False(t, players[p.ID], "%s in two sessions", p.ID)
			players[p.ID] = true
		}
	}
}
