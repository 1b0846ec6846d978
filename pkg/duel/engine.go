package duel

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sauerbraten/duelist/pkg/events"
	"github.com/sauerbraten/duelist/pkg/geom"
	"github.com/sauerbraten/duelist/pkg/score"
)

type Options struct {
	Countdown         int           // number of countdown steps before the fight starts
	CountdownInterval time.Duration // time between countdown steps
	CleanupDelay      time.Duration // time between resolution and cleanup
	RequestTTL        time.Duration
	StoreTimeout      time.Duration // per resolution, for all score updates
	Lobby             geom.Position // where players with stale duel tags are sent if their arena is unknown
}

func DefaultOptions() Options {
	return Options{
		Countdown:         5,
		CountdownInterval: 1 * time.Second,
		CleanupDelay:      3 * time.Second,
		RequestTTL:        60 * time.Second,
		StoreTimeout:      2 * time.Second,
		Lobby:             geom.NewPosition(0, 64, 0, geom.DefaultRealm),
	}
}

// Engine owns all duel state: registry, requests, queue and sessions. It must only be
// used from one goroutine, the host's tick loop.
type Engine struct {
	opts     Options
	host     Host
	perms    Permissions
	ledger   *score.Ledger
	log      zerolog.Logger
	clock    func() time.Time
	newID    func() string
	registry *Registry
	tracker  *Tracker
	requests *RequestBoard
	queue    *Queue
	bus      *events.Bus
	cleaning []*Session // resolved sessions waiting for cleanup, oldest first
}

// NewEngine creates an engine. perms may be nil to let everyone duel.
func NewEngine(host Host, ledger *score.Ledger, perms Permissions, log zerolog.Logger, opts Options) *Engine {
	if perms == nil {
		perms = allowEveryone{}
	}
	return &Engine{
		opts:     opts,
		host:     host,
		perms:    perms,
		ledger:   ledger,
		log:      log,
		clock:    time.Now,
		newID:    newSessionID,
		registry: NewRegistry(),
		tracker:  NewTracker(),
		requests: NewRequestBoard(opts.RequestTTL),
		queue:    &Queue{},
		bus:      events.NewBus(),
	}
}

// WithClock replaces the engine's clock.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.clock = now
	return e
}

func (e *Engine) Registry() *Registry       { return e.registry }
func (e *Engine) Tracker() *Tracker         { return e.tracker }
func (e *Engine) Requests() *RequestBoard   { return e.requests }
func (e *Engine) Queue() *Queue             { return e.queue }
func (e *Engine) Bus() *events.Bus          { return e.bus }
func (e *Engine) Ledger() *score.Ledger     { return e.ledger }
func (e *Engine) Options() Options          { return e.opts }
func (e *Engine) Now() time.Time            { return e.clock() }
func (e *Engine) Allowed(p PlayerID) bool   { return e.perms.Allowed(string(p)) }
func (e *Engine) InSession(p PlayerID) bool { return e.tracker.InSession(p) }

func (e *Engine) RegisterKit(k Kit) error {
	err := e.registry.RegisterKit(k)
	if err != nil {
		e.log.Warn().Err(err).Str("kit", k.Name).Msg("kit not registered")
		return err
	}
	e.log.Info().Str("kit", k.Name).Str("lock", k.Lock.String()).Msg("registered kit")
	return nil
}

func (e *Engine) RegisterArena(a Arena) error {
	err := e.registry.RegisterArena(a)
	if err != nil {
		e.log.Warn().Err(err).Str("arena", a.Name).Msg("arena not registered")
		return err
	}
	e.log.Info().Str("arena", a.Name).Str("kit", a.Kit).Msg("registered arena")
	return nil
}

// Tick runs the periodic work, in this order: request expiry, queue pairing, countdowns,
// due cleanups.
func (e *Engine) Tick(now time.Time) {
	e.PurgeExpired(now)
	e.drainQueue(now)
	e.bus.Publish(events.Event{Kind: events.Tick, At: now})
	e.runDueCleanups(now)
}

func (e *Engine) HandleElimination(victim, killer PlayerID) {
	e.bus.Publish(events.Event{Kind: events.Elimination, Subject: string(victim), Other: string(killer)})
}

func (e *Engine) HandleAttack(attacker, victim PlayerID) {
	e.bus.Publish(events.Event{Kind: events.Attack, Subject: string(attacker), Other: string(victim)})
}

// HandleDisconnect ends the player's session (crediting the opponent), removes them from
// the queue and drops all requests they are part of.
func (e *Engine) HandleDisconnect(p PlayerID) {
	e.bus.Publish(events.Event{Kind: events.Disconnect, Subject: string(p)})
	e.queue.remove(p)
	e.playerLeft(p)
}

// Leave forfeits the player's session, or takes them out of the queue.
func (e *Engine) Leave(p PlayerID) error {
	if s, ok := e.tracker.SessionOf(p); ok {
		if !e.tracker.IsLive(s) {
			return ErrDuelOver
		}
		e.bus.Publish(events.Event{Kind: events.Leave, Subject: string(p)})
		return nil
	}
	if e.LeaveQueue(p) {
		return nil
	}
	return ErrNotInSession
}

type ArenaStatus struct {
	Arena   *Arena
	Session *Session // nil if free
}

func (e *Engine) ArenaStatuses() []ArenaStatus {
	arenas := e.registry.Arenas()
	statuses := make([]ArenaStatus, 0, len(arenas))
	for _, a := range arenas {
		s, _ := e.tracker.SessionInArena(a)
		statuses = append(statuses, ArenaStatus{Arena: a, Session: s})
	}
	return statuses
}

func (e *Engine) SessionOf(p PlayerID) (*Session, bool) { return e.tracker.SessionOf(p) }

func (e *Engine) Sessions() []*Session { return e.tracker.Sessions() }

func (e *Engine) tell(p PlayerID, msg string) {
	if _, online := e.host.Lookup(p); online {
		e.host.SendMessage(p, msg)
	}
}

func (e *Engine) online(p PlayerID) bool {
	_, ok := e.host.Lookup(p)
	return ok
}

func (e *Engine) player(p PlayerID) Player {
	if pl, ok := e.host.Lookup(p); ok {
		return pl
	}
	return Player{ID: p}
}
