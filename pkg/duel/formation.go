package duel

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sauerbraten/duelist/pkg/chat"
	"github.com/sauerbraten/duelist/pkg/events"
)

func newSessionID() string { return uuid.NewString() }

// Form starts a session between a and b in arena, or in the next free arena if arena is
// nil. Nothing is changed unless the session could be formed.
func (e *Engine) Form(a, b PlayerID, arena *Arena) (*Session, error) {
	if a == b {
		return nil, ErrSamePlayerTwice
	}
	pa, ok := e.host.Lookup(a)
	if !ok {
		return nil, ErrPlayerOffline
	}
	pb, ok := e.host.Lookup(b)
	if !ok {
		return nil, ErrPlayerOffline
	}
	if e.tracker.InSession(a) || e.tracker.InSession(b) {
		return nil, ErrAlreadyInSession
	}
	if !e.Allowed(a) || !e.Allowed(b) {
		return nil, ErrNotPermitted
	}

	if arena == nil {
		var err error
		arena, err = e.registry.NextFreeArena(e.arenaUsable)
		if err != nil {
			return nil, err
		}
	} else if !e.tracker.ArenaFree(arena) {
		return nil, ErrArenaInUse
	}

	kit, ok := e.registry.FindKit(arena.Kit)
	if !ok {
		return nil, ErrKitUnavailable
	}
	loadout, err := e.host.Loadout(kit.Source)
	if err != nil {
		e.log.Error().Err(err).Str("kit", kit.Name).Str("arena", arena.Name).Msg("could not resolve kit loadout")
		return nil, ErrKitUnavailable
	}

	now := e.clock()
	s := &Session{
		ID:        e.newID(),
		A:         pa,
		B:         pb,
		Arena:     arena,
		Phase:     Forming,
		CreatedAt: now,
		loadout:   loadout,
	}
	if err := e.tracker.reserve(s); err != nil {
		return nil, err
	}
	e.queue.remove(a)
	e.queue.remove(b)

	e.log.Info().Str("session", s.ID).Str("arena", arena.Name).Str("a", string(a)).Str("b", string(b)).Msg("session formed")

	e.startCountdown(s, kit, now)
	return s, nil
}

// arenaUsable reports whether arena is free and its kit's loadout can be resolved.
func (e *Engine) arenaUsable(arena *Arena) bool {
	if !e.tracker.ArenaFree(arena) {
		return false
	}
	kit, ok := e.registry.FindKit(arena.Kit)
	if !ok {
		return false
	}
	if _, err := e.host.Loadout(kit.Source); err != nil {
		e.log.Debug().Err(err).Str("arena", arena.Name).Str("kit", kit.Name).Msg("skipping arena, kit can't be granted")
		return false
	}
	return true
}

func (e *Engine) startCountdown(s *Session, kit *Kit, now time.Time) {
	s.Phase = CountdownActive
	for _, p := range s.Participants() {
		e.host.Teleport(p.ID, s.Arena.spawnFor(s, p.ID))
		grant(e.host, p.ID, s.loadout, kit.Lock)
		e.host.SetTag(p.ID, TagInDuel)
		e.host.SetTag(p.ID, TagArenaPrefix+s.Arena.Name)
	}

	s.group = e.bus.NewGroup()
	s.group.Subscribe(events.Elimination, func(ev events.Event) { e.onElimination(s, ev) })
	s.group.Subscribe(events.Disconnect, func(ev events.Event) { e.onQuit(s, ev, Disconnected) })
	s.group.Subscribe(events.Leave, func(ev events.Event) { e.onQuit(s, ev, Forfeited) })
	s.group.Subscribe(events.Attack, func(ev events.Event) { e.onAttack(s, ev) })

	s.Countdown = e.opts.Countdown
	if s.Countdown <= 0 {
		e.goLive(s)
		return
	}

	for _, p := range s.Participants() {
		e.host.SendMessage(p.ID, fmt.Sprintf("duel against %s in %s starts in %s", chat.Blue(s.Opponent(p.ID).String()), chat.Blue(s.Arena.Name), chat.Orange(fmt.Sprintf("%d", s.Countdown))))
	}
	s.nextCountdown = now.Add(e.opts.CountdownInterval)
	s.countdownTick = s.group.Subscribe(events.Tick, func(ev events.Event) { e.onCountdownTick(s, ev.At) })
}

func (e *Engine) onCountdownTick(s *Session, now time.Time) {
	if s.Phase != CountdownActive {
		return
	}
	before := s.Countdown
	for s.Countdown > 0 && !now.Before(s.nextCountdown) {
		s.Countdown--
		s.nextCountdown = s.nextCountdown.Add(e.opts.CountdownInterval)
	}
	if s.Countdown == before {
		return
	}
	if s.Countdown > 0 {
		for _, p := range s.Participants() {
			e.tell(p.ID, chat.Orange(fmt.Sprintf("%d", s.Countdown)))
		}
		return
	}
	s.group.Drop(s.countdownTick)
	s.countdownTick = 0
	e.goLive(s)
}

func (e *Engine) goLive(s *Session) {
	s.Phase = Live
	for _, p := range s.Participants() {
		e.host.SetTag(p.ID, TagRunning)
		for _, cmd := range s.Arena.OnStart {
			e.host.RunCommand(p.ID, cmd)
		}
		e.tell(p.ID, chat.Green("fight!"))
	}
	e.log.Info().Str("session", s.ID).Msg("session live")
}
