package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sauerbraten/duelist/pkg/duel"
	"github.com/sauerbraten/duelist/pkg/duelban"
	"github.com/sauerbraten/duelist/pkg/duelcmd"
	"github.com/sauerbraten/duelist/pkg/geom"
	"github.com/sauerbraten/duelist/pkg/pausableticker"
	"github.com/sauerbraten/duelist/pkg/privilege"
	"github.com/sauerbraten/duelist/pkg/prompt"
	"github.com/sauerbraten/duelist/pkg/score"
)

const testKits = `[
	{
		"name": "fists",
		"container": {"x": 1, "y": 1, "z": 1, "realm": "overworld"},
		"lock": "slot",
		"extras": [{"slot": 0, "item": {"id": "stick", "count": 1}}]
	},
	{"name": "broken", "container": {"x": 2, "y": 1, "z": 1, "realm": "overworld"}, "lock": "glue"}
]`

const testArenas = `[
	{
		"name": "pit",
		"kit": "fists",
		"spawn_a": {"x": 200, "y": 70, "z": 0, "realm": "overworld"},
		"spawn_b": {"x": 220, "y": 70, "z": 0, "realm": "overworld"},
		"exit": {"x": 210, "y": 80, "z": 30, "realm": "overworld"},
		"on_start": ["heal @s"],
		"on_end": ["say gg @s"]
	},
	{"name": "nowhere", "kit": "broken"}
]`

type testServer struct {
	*Server
	now   time.Time
	clock *gameClock
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	conf := defaultConfig()
	conf.CountdownSeconds = 1
	conf.CleanupDelayMs = 1000
	conf.PromptTimeoutSeconds = 0
	conf.Privileges = map[string]string{"admin": "admin", "mod": "master"}

	ts := &testServer{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	ts.clock = &gameClock{wall: func() time.Time { return ts.now }}

	log := zerolog.Nop()
	cs := &ClientManager{log: log}
	world := NewWorld(cs, conf.Lobby, log)
	bm := duelban.New(log).WithClock(ts.clock.Now)
	engine := duel.NewEngine(world, score.NewLedger(score.NewMemory()), bm, log, conf.engineOptions()).WithClock(ts.clock.Now)
	forms := newFormPresenter(world, conf.promptTimeout(), make(chan struct{}))
	prompts := prompt.NewBoard(forms)

	ts.Server = &Server{
		State:   &State{UpSince: ts.now, NumClients: cs.NumberOfClientsConnected},
		Config:  conf,
		Clients: cs,
		World:   world,
		Engine:  engine,
		Duels:   duelcmd.New(engine, world, prompts, bm, log),
		Prompts: prompts,
		Forms:   forms,
		Bans:    bm,
		Clock:   ts.clock,
		Ticker:  pausableticker.New(time.Hour),
		log:     log,
	}
	t.Cleanup(ts.Ticker.Stop)

	kits := writeFile(t, dir, "kits.json", testKits)
	arenas := writeFile(t, dir, "arenas.json", testArenas)
	require.NoError(t, loadRegistrations(engine, world, kits, arenas, log))
	return ts
}

// connect adds a client without a network connection; its lines stay in the send buffer.
func (ts *testServer) connect(name string) *Client {
	c := ts.Clients.Add(nil)
	if name != "" {
		ts.HandleLine(c, name)
	}
	return c
}

func (ts *testServer) advance(d time.Duration) {
	ts.now = ts.now.Add(d)
	ts.Engine.Tick(ts.clock.Now())
}

func (ts *testServer) do(c *Client, line string) { ts.HandleLine(c, line) }

// lines drains everything sent to c so far.
func lines(c *Client) []string {
	var out []string
	for {
		select {
		case msg := <-c.send:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func saw(c *Client, substr string) bool {
	for _, l := range lines(c) {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestRegistrationsSkipInvalidEntries(t *testing.T) {
	ts := newTestServer(t)

	require.Len(t, ts.Engine.Registry().Kits(), 1)
	require.Len(t, ts.Engine.Registry().Arenas(), 1)
	assert.Equal(t, "pit", ts.Engine.Registry().Arenas()[0].Name)
}

func TestJoin(t *testing.T) {
	ts := newTestServer(t)

	c := ts.connect("")
	assert.True(t, saw(c, "what's your name"))

	ts.do(c, "!!!")
	assert.False(t, c.Joined)
	assert.True(t, saw(c, "names are"))

	ts.do(c, "Alice")
	require.True(t, c.Joined)
	assert.Equal(t, duel.PlayerID("alice"), c.ID)
	assert.Equal(t, "Alice", c.Name)
	assert.Equal(t, privilege.None, c.Privilege)

	other := ts.connect("alice")
	assert.False(t, other.Joined)
	assert.True(t, saw(other, "taken"))

	admin := ts.connect("Admin")
	assert.Equal(t, privilege.Admin, admin.Privilege)
	mod := ts.connect("mod")
	assert.Equal(t, privilege.Master, mod.Privilege)
}

func TestDuelOverChat(t *testing.T) {
	ts := newTestServer(t)
	alice, bob := ts.connect("alice"), ts.connect("bob")
	lines(alice)
	lines(bob)

	ts.do(alice, "#duel bob")
	assert.True(t, saw(bob, "duel accept alice"))
	ts.do(bob, "#duel accept alice")
	require.True(t, ts.Engine.InSession("alice"))

	ts.advance(time.Second)
	s, ok := ts.Engine.SessionOf("alice")
	require.True(t, ok)
	require.Equal(t, duel.Live, s.Phase)
	assert.True(t, saw(alice, "fight"))

	for i := 0; i < maxHealth/baseDamage; i++ {
		ts.do(bob, "#hit alice")
	}
	assert.Equal(t, duel.Cleanup, s.Phase)

	ts.advance(time.Second)
	assert.False(t, ts.Engine.InSession("alice"))
	assert.False(t, ts.Engine.InSession("bob"))
	assert.Equal(t, "pit", ts.Engine.Registry().Arenas()[0].Name)
	assert.Equal(t, ts.Engine.Registry().Arenas()[0].Exit, ts.World.avatar("bob").Position)
	assert.Empty(t, ts.World.Tags("bob"))

	rec, err := ts.Engine.Ledger().Record(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Wins)
	assert.Equal(t, 1, rec.Kills)
	assert.Equal(t, maxHealth/baseDamage, rec.Attacks)
	assert.True(t, saw(bob, "you won"))
}

func TestHitOutsideDuel(t *testing.T) {
	ts := newTestServer(t)
	alice, bob := ts.connect("alice"), ts.connect("bob")
	lines(alice)

	ts.do(alice, "#hit bob")
	assert.True(t, saw(alice, "you hit bob"))
	assert.Equal(t, maxHealth-baseDamage, ts.World.avatar("bob").Health)

	ts.do(alice, "#hit alice")
	assert.True(t, saw(alice, "yourself"))
	ts.do(alice, "#hit carol")
	assert.True(t, saw(alice, "not online"))

	ts.World.Teleport("bob", geom.NewPosition(0, 64, 100, geom.DefaultRealm))
	ts.do(alice, "#hit bob")
	assert.True(t, saw(alice, "out of reach"))
	lines(bob)
}

func TestDisconnectForfeits(t *testing.T) {
	ts := newTestServer(t)
	alice, bob := ts.connect("alice"), ts.connect("bob")

	ts.do(alice, "#duel bob")
	ts.do(bob, "#duel accept alice")
	ts.advance(time.Second)
	require.True(t, ts.Engine.InSession("bob"))

	ts.Disconnect(alice)
	assert.False(t, alice.InUse)
	ts.advance(time.Second)
	assert.False(t, ts.Engine.InSession("bob"))

	rec, err := ts.Engine.Ledger().Record(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Wins)
	assert.Equal(t, 0, rec.Kills)

	// alice's avatar still carries the duel tags; they're cleared when she comes back
	assert.NotEmpty(t, ts.World.Tags("alice"))
	back := ts.connect("alice")
	assert.True(t, saw(back, "interrupted"))
	assert.Empty(t, ts.World.Tags("alice"))
	lines(bob)
}

func TestFormsAnsweredByNumber(t *testing.T) {
	ts := newTestServer(t)
	alice, bob := ts.connect("alice"), ts.connect("bob")
	lines(alice)
	lines(bob)

	ts.do(alice, "#duel")
	assert.True(t, saw(alice, "who do you want to duel?"))
	ts.do(alice, "#1")
	assert.True(t, saw(alice, "where?"))
	ts.do(alice, "#2")
	assert.True(t, saw(bob, "duel accept alice"))

	ts.do(alice, "#0")
	assert.True(t, saw(alice, "nothing to cancel"))
	ts.do(alice, "#4")
	assert.True(t, saw(alice, "nothing to answer"))
}

func TestPauseStopsTheClock(t *testing.T) {
	ts := newTestServer(t)
	admin, bob := ts.connect("admin"), ts.connect("bob")

	ts.do(bob, "#pause")
	assert.True(t, saw(bob, "not allowed"))

	before := ts.clock.Now()
	ts.do(admin, "#pause")
	assert.True(t, saw(bob, "admin paused the server"))
	ts.now = ts.now.Add(time.Minute)
	assert.Equal(t, before, ts.clock.Now())

	ts.do(admin, "#resume")
	assert.True(t, saw(bob, "admin resumed the server"))
	ts.now = ts.now.Add(time.Second)
	assert.Equal(t, before.Add(time.Second), ts.clock.Now())
}

func TestRequestsExpireInGameTime(t *testing.T) {
	ts := newTestServer(t)
	admin, bob := ts.connect("admin"), ts.connect("bob")

	ts.do(admin, "#duel bob")
	ts.do(admin, "#pause")
	ts.now = ts.now.Add(time.Hour)
	ts.Engine.Tick(ts.clock.Now())
	assert.Len(t, ts.Engine.Requests().Incoming("bob"), 1)

	ts.do(admin, "#resume")
	ts.advance(time.Duration(ts.Config.RequestTTLSeconds)*time.Second + time.Millisecond)
	assert.Empty(t, ts.Engine.Requests().Incoming("bob"))
	lines(bob)
}

func TestChatIsBroadcast(t *testing.T) {
	ts := newTestServer(t)
	alice, bob := ts.connect("alice"), ts.connect("bob")
	lines(alice)

	ts.do(alice, "hello")
	assert.True(t, saw(bob, "alice: hello"))
	ts.do(alice, "#nonsense")
	assert.True(t, saw(alice, "unknown command"))
}

func TestKitStockedFromInventory(t *testing.T) {
	ts := newTestServer(t)
	admin, alice, bob := ts.connect("admin"), ts.connect("alice"), ts.connect("bob")
	lines(bob)

	ts.do(alice, "#give bow")
	assert.True(t, saw(alice, "not allowed"))

	ts.do(admin, "#wear chest leather_chestplate")
	ts.do(admin, "#give bow")
	ts.do(admin, "#give arrow 64")
	lines(admin)
	ts.do(admin, "#duel kit add bows 5 5 5")
	assert.True(t, saw(admin, "with 3 items from your inventory"))
	ts.do(admin, "#duel arena add range bows 400 70 0 420 70 0 410 80 30")
	assert.True(t, saw(admin, "registered arena range"))

	ts.do(alice, "#duel bob range")
	ts.do(bob, "#duel accept alice")
	s, ok := ts.Engine.SessionOf("bob")
	require.True(t, ok)
	assert.Equal(t, "range", s.Arena.Name)

	a := ts.World.avatar("bob")
	assert.Equal(t, duel.Item{ID: "leather_chestplate", Count: 1}, a.Armor[duel.Chest])
	assert.Equal(t, duel.Item{ID: "bow", Count: 1}, a.Slots[0])
	assert.Equal(t, duel.Item{ID: "arrow", Count: 64}, a.Slots[1])
	assert.Equal(t, duel.LockNone, a.Locks["slot:0"])
}

func TestInfo(t *testing.T) {
	ts := newTestServer(t)
	admin, alice, bob := ts.connect("admin"), ts.connect("alice"), ts.connect("bob")
	lines(admin)

	ts.do(alice, "#info")
	assert.True(t, saw(alice, "not allowed"))

	ts.do(admin, "#info")
	assert.True(t, saw(admin, "3 clients connected, 0 duels running, 0 queued"))

	ts.do(alice, "#duel bob")
	ts.do(bob, "#duel accept alice")
	ts.do(admin, "#pause")
	lines(admin)
	ts.do(admin, "#info")
	assert.True(t, saw(admin, "1 duels running, 0 queued, paused"))
}

func TestHitByClientNumber(t *testing.T) {
	ts := newTestServer(t)
	alice, bob := ts.connect("alice"), ts.connect("bob")
	lines(alice)

	ts.do(alice, "#hit "+strconv.Itoa(int(bob.CN)))
	assert.True(t, saw(alice, "you hit bob"))
	ts.do(alice, "#hit 7")
	assert.True(t, saw(alice, "not online"))
}
