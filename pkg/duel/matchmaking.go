package duel

import (
	"errors"
	"time"

	"github.com/sauerbraten/duelist/pkg/chat"
)

func (e *Engine) Enqueue(p PlayerID) error {
	if e.tracker.InSession(p) {
		return ErrAlreadyInSession
	}
	if !e.Allowed(p) {
		return ErrNotPermitted
	}
	if !e.queue.push(p, e.clock()) {
		return ErrAlreadyQueued
	}
	e.log.Debug().Str("player", string(p)).Int("position", e.queue.Len()).Msg("queued")
	return nil
}

func (e *Engine) LeaveQueue(p PlayerID) bool {
	return e.queue.remove(p)
}

func (e *Engine) queueEligible(p PlayerID) bool {
	return e.online(p) && !e.tracker.InSession(p) && e.Allowed(p)
}

// drainQueue pairs up queued players, oldest first, as long as arenas are free. A pair
// that can't be placed goes back to the head of the queue and draining stops.
func (e *Engine) drainQueue(now time.Time) {
	for e.queue.Len() >= 2 {
		a, b := e.queue.pop(), e.queue.pop()

		if !e.queueEligible(a.player) {
			e.dropFromQueue(a.player)
			e.queue.pushFront(b)
			continue
		}
		if !e.queueEligible(b.player) {
			e.dropFromQueue(b.player)
			e.queue.pushFront(a)
			continue
		}

		arena, err := e.registry.NextFreeArena(e.arenaUsable)
		if err != nil {
			e.queue.pushFront(a, b)
			msg := chat.Gray("no arena is free right now, you stay at the front of the queue")
			if errors.Is(err, ErrNoArenas) {
				msg = chat.Fail("dueling is currently unavailable, try again later")
			}
			e.notifyWaiting(msg, a, b)
			return
		}

		if _, err := e.Form(a.player, b.player, arena); err != nil {
			e.queue.pushFront(a, b)
			if !a.notified || !b.notified {
				e.log.Warn().Err(err).Str("a", string(a.player)).Str("b", string(b.player)).Msg("could not form queued pair")
			}
			e.notifyWaiting(chat.Fail("could not start your duel, try again later"), a, b)
			return
		}
		e.log.Debug().Str("a", string(a.player)).Str("b", string(b.player)).Str("arena", arena.Name).Time("queued_since", a.since).Msg("paired from queue")
	}
}

// notifyWaiting tells each entry msg once while it keeps waiting.
func (e *Engine) notifyWaiting(msg string, entries ...*queueEntry) {
	for _, entry := range entries {
		if entry.notified {
			continue
		}
		entry.notified = true
		e.tell(entry.player, msg)
	}
}

func (e *Engine) dropFromQueue(p PlayerID) {
	e.tell(p, chat.Fail("you were removed from the duel queue"))
	e.log.Debug().Str("player", string(p)).Msg("dropped ineligible player from queue")
}
