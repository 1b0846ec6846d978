package duel

import "sort"

// Tracker knows which arenas and players are bound to a session. An arena and its players
// stay bound from formation until cleanup; the live index only holds sessions that have
// not started resolving.
type Tracker struct {
	arenas  map[string]*Session // arena key -> session
	players map[PlayerID]*Session
	live    map[string]*Session // session id -> session
}

func NewTracker() *Tracker {
	return &Tracker{
		arenas:  map[string]*Session{},
		players: map[PlayerID]*Session{},
		live:    map[string]*Session{},
	}
}

func (t *Tracker) ArenaFree(a *Arena) bool {
	_, busy := t.arenas[key(a.Name)]
	return !busy
}

func (t *Tracker) SessionInArena(a *Arena) (*Session, bool) {
	s, ok := t.arenas[key(a.Name)]
	return s, ok
}

func (t *Tracker) SessionOf(p PlayerID) (*Session, bool) {
	s, ok := t.players[p]
	return s, ok
}

func (t *Tracker) InSession(p PlayerID) bool {
	_, ok := t.players[p]
	return ok
}

func (t *Tracker) IsLive(s *Session) bool {
	_, ok := t.live[s.ID]
	return ok
}

// reserve binds arena and players to s, checking everything before changing anything.
func (t *Tracker) reserve(s *Session) error {
	if !t.ArenaFree(s.Arena) {
		return ErrArenaInUse
	}
	if t.InSession(s.A.ID) || t.InSession(s.B.ID) {
		return ErrAlreadyInSession
	}
	t.arenas[key(s.Arena.Name)] = s
	t.players[s.A.ID] = s
	t.players[s.B.ID] = s
	t.live[s.ID] = s
	return nil
}

// markResolving removes s from the live index and reports whether it was live. Only the
// first caller gets true.
func (t *Tracker) markResolving(s *Session) bool {
	if _, ok := t.live[s.ID]; !ok {
		return false
	}
	delete(t.live, s.ID)
	return true
}

func (t *Tracker) release(s *Session) {
	delete(t.live, s.ID)
	if t.arenas[key(s.Arena.Name)] == s {
		delete(t.arenas, key(s.Arena.Name))
	}
	for _, p := range []PlayerID{s.A.ID, s.B.ID} {
		if t.players[p] == s {
			delete(t.players, p)
		}
	}
}

// Sessions returns all bound sessions, oldest first.
func (t *Tracker) Sessions() []*Session {
	sessions := make([]*Session, 0, len(t.arenas))
	for _, s := range t.arenas {
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions
}

func (t *Tracker) LiveCount() int { return len(t.live) }
