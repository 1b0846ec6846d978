package duel

import (
	"fmt"
	"time"

	"github.com/sauerbraten/duelist/pkg/chat"
)

// SendRequest invites target to a duel. arena may be empty to let the engine choose one
// when the request is accepted.
func (e *Engine) SendRequest(requester, target PlayerID, arena string) (*Request, error) {
	if requester == target {
		return nil, ErrSelfTarget
	}
	if e.tracker.InSession(requester) {
		return nil, ErrRequesterInSession
	}
	t, ok := e.host.Lookup(target)
	if !ok {
		return nil, ErrTargetNotFound
	}
	if e.tracker.InSession(target) {
		return nil, ErrTargetInSession
	}
	if !e.Allowed(requester) || !e.Allowed(target) {
		return nil, ErrNotPermitted
	}
	if arena != "" {
		a, ok := e.registry.FindArena(arena)
		if !ok {
			return nil, ErrArenaNotFound
		}
		if !e.tracker.ArenaFree(a) {
			return nil, ErrArenaInUse
		}
		arena = a.Name
	}

	r := &Request{
		Requester: e.player(requester),
		Target:    t,
		Arena:     arena,
		CreatedAt: e.clock(),
	}
	if !e.requests.add(r) {
		return nil, ErrDuplicateRequest
	}

	where := "any arena"
	if arena != "" {
		where = arena
	}
	e.host.SendMessage(target, fmt.Sprintf("%s challenges you to a duel (%s), type %s to accept", chat.Blue(r.Requester.String()), where, chat.Yellow("duel accept "+r.Requester.Name)))
	e.log.Debug().Str("requester", string(requester)).Str("target", string(target)).Str("arena", arena).Msg("request sent")
	return r, nil
}

// AcceptRequest accepts requester's invitation to acceptor and forms the session. If the
// arena named in the request is no longer available, the next free arena is used instead.
// The request is kept if no arena is free.
func (e *Engine) AcceptRequest(acceptor, requester PlayerID) (*Session, error) {
	r, ok := e.requests.Get(requester, acceptor)
	if !ok {
		return nil, ErrRequestNotFound
	}
	if r.expired(e.clock(), e.requests.TTL()) {
		e.expire(r)
		return nil, ErrRequestNotFound
	}
	if !e.online(requester) {
		e.requests.remove(r)
		return nil, ErrTargetNotFound
	}
	if e.tracker.InSession(requester) {
		return nil, ErrTargetInSession
	}
	if e.tracker.InSession(acceptor) {
		return nil, ErrRequesterInSession
	}

	arena, substituted := (*Arena)(nil), false
	if r.Arena != "" {
		if a, ok := e.registry.FindArena(r.Arena); ok && e.arenaUsable(a) {
			arena = a
		}
	}
	if arena == nil {
		a, err := e.registry.NextFreeArena(e.arenaUsable)
		if err != nil {
			return nil, err
		}
		arena, substituted = a, r.Arena != ""
	}

	s, err := e.Form(requester, acceptor, arena)
	if err != nil {
		return nil, err
	}
	e.requests.remove(r)

	if substituted {
		msg := chat.Gray(fmt.Sprintf("%s is not available, playing in %s instead", r.Arena, arena.Name))
		e.host.SendMessage(requester, msg)
		e.host.SendMessage(acceptor, msg)
	}
	e.log.Debug().Str("requester", string(requester)).Str("target", string(acceptor)).Str("arena", arena.Name).Msg("request accepted")
	return s, nil
}

// RejectRequest declines requester's invitation to target.
func (e *Engine) RejectRequest(target, requester PlayerID) error {
	r, ok := e.requests.Get(requester, target)
	if !ok {
		return ErrRequestNotFound
	}
	e.requests.remove(r)
	e.tell(requester, chat.Gray(fmt.Sprintf("%s declined your duel request", r.Target)))
	return nil
}

// CancelRequest withdraws requester's invitation to target.
func (e *Engine) CancelRequest(requester, target PlayerID) error {
	r, ok := e.requests.Get(requester, target)
	if !ok {
		return ErrRequestNotFound
	}
	e.requests.remove(r)
	e.tell(target, chat.Gray(fmt.Sprintf("%s withdrew their duel request", r.Requester)))
	return nil
}

// PurgeExpired removes all requests older than the TTL, telling both sides, and returns
// how many were removed.
func (e *Engine) PurgeExpired(now time.Time) int {
	expired := e.requests.expired(now)
	for _, r := range expired {
		e.expire(r)
	}
	return len(expired)
}

func (e *Engine) expire(r *Request) {
	if !e.requests.remove(r) {
		return
	}
	e.tell(r.Requester.ID, chat.Gray(fmt.Sprintf("your duel request to %s expired", r.Target)))
	e.tell(r.Target.ID, chat.Gray(fmt.Sprintf("the duel request from %s expired", r.Requester)))
	e.log.Debug().Str("requester", string(r.Requester.ID)).Str("target", string(r.Target.ID)).Msg("request expired")
}

// playerLeft drops all requests p is part of, telling the other side.
func (e *Engine) playerLeft(p PlayerID) {
	for _, r := range e.requests.involving(p) {
		e.requests.remove(r)
		if r.Requester.ID == p {
			e.tell(r.Target.ID, chat.Gray(fmt.Sprintf("the duel request from %s was withdrawn, they left", r.Requester)))
		} else {
			e.tell(r.Requester.ID, chat.Gray(fmt.Sprintf("your duel request to %s was dropped, they left", r.Target)))
		}
	}
}
